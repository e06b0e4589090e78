package models

import "time"

// SectorUncategorized is the sentinel sector label used when no
// classification is available. Never empty — downstream grouping keys on it.
const SectorUncategorized = "Uncategorized"

// Instrument is the result of resolving an opaque instrument identifier.
type Instrument struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// InstrumentMetadata carries the sector label and asset-class flag for a
// resolved symbol. Cached for the process lifetime once resolved.
type InstrumentMetadata struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
	Sector string `json:"sector"`
	IsETF  bool   `json:"is_etf"`
}

// PriceBar is a single (date, closing price) sample of a benchmark or
// instrument price series. Series are ordered ascending by date.
type PriceBar struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}
