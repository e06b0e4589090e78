// Package analytics implements the numeric core of FolioView: the
// money-weighted return solver, the benchmark SIP simulation, and the
// historical equity-curve reconstruction.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/mbaxter/folioview/internal/models"
)

// CashFlow is a single dated cash flow for XIRR calculation.
// Negative values = money out (buys), positive values = money in (sells,
// terminal market value).
type CashFlow struct {
	Date   time.Time
	Amount float64
}

// Result is the outcome of an XIRR solve. Converged is false for degenerate
// series (same-sign flows, a single data point) or solver non-convergence;
// callers choose the zero default explicitly via RateOrZero so a broken
// holding's rate never aborts a report.
type Result struct {
	Rate      float64
	Converged bool
}

// RateOrZero returns the solved rate, or 0.0 when no rate is available.
func (r Result) RateOrZero() float64 {
	if !r.Converged {
		return 0
	}
	return r.Rate
}

// ParseFlows converts a per-symbol cash-flow series into solver flows,
// skipping entries whose date does not parse.
func ParseFlows(series models.CashFlowSeries) []CashFlow {
	flows := make([]CashFlow, 0, len(series))
	for _, f := range series {
		d, err := time.Parse("2006-01-02", f.Date)
		if err != nil {
			continue
		}
		flows = append(flows, CashFlow{Date: d, Amount: f.Amount})
	}
	return flows
}

// SolveWithTerminal appends a synthetic terminal inflow equal to the current
// market value at the valuation date and solves for the annualized
// money-weighted rate of return. This converts "money invested over time,
// now worth X" into a complete stream solvable for an internal rate.
func SolveWithTerminal(flows []CashFlow, terminalValue float64, now time.Time) Result {
	all := make([]CashFlow, len(flows), len(flows)+1)
	copy(all, flows)
	if terminalValue > 0 {
		all = append(all, CashFlow{Date: now, Amount: terminalValue})
	}
	return Solve(all)
}

// Solve computes the annualized internal rate of return for an irregular
// cash-flow series using Newton-Raphson iteration with a bisection fallback.
// The rate is returned as a decimal fraction (0.12 = 12% per year).
func Solve(flows []CashFlow) Result {
	if len(flows) < 2 {
		return Result{}
	}

	sorted := make([]CashFlow, len(flows))
	copy(sorted, flows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	// Need at least one negative and one positive flow
	hasNeg, hasPos := false, false
	for _, f := range sorted {
		if f.Amount < 0 {
			hasNeg = true
		}
		if f.Amount > 0 {
			hasPos = true
		}
	}
	if !hasNeg || !hasPos {
		return Result{}
	}

	rate := solve(sorted)
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return Result{}
	}

	return Result{Rate: rate, Converged: true}
}

// solve uses Newton-Raphson to find the rate r such that NPV(r) = 0.
// NPV(r) = sum of amount_i / (1 + r)^(years_i) where years_i = days from
// first date / 365.25.
func solve(flows []CashFlow) float64 {
	const (
		maxIter = 100
		tol     = 1e-7
		minRate = -0.999 // rate can't go below -99.9%
	)

	baseDate := flows[0].Date

	// Convert dates to year fractions
	years := make([]float64, len(flows))
	for i, f := range flows {
		days := f.Date.Sub(baseDate).Hours() / 24
		years[i] = days / 365.25
	}

	// Initial guess: use simple return as starting point
	totalInvested := 0.0
	totalReceived := 0.0
	for _, f := range flows {
		if f.Amount < 0 {
			totalInvested -= f.Amount
		} else {
			totalReceived += f.Amount
		}
	}

	guess := 0.1 // default 10%
	if totalInvested > 0 {
		simpleReturn := totalReceived/totalInvested - 1
		if simpleReturn > -0.9 && simpleReturn < 10 {
			guess = simpleReturn
		}
	}

	rate := guess

	for iter := 0; iter < maxIter; iter++ {
		npv := 0.0
		dnpv := 0.0

		for i, f := range flows {
			y := years[i]
			base := 1 + rate
			if base <= 0 {
				// Avoid negative base with fractional exponent
				rate = minRate
				base = 1 + rate
			}
			discount := math.Pow(base, y)
			if discount == 0 {
				continue
			}
			npv += f.Amount / discount
			if y != 0 {
				dnpv -= y * f.Amount / (discount * base)
			}
		}

		if math.Abs(npv) < tol {
			return rate
		}

		if dnpv == 0 {
			break
		}

		newRate := rate - npv/dnpv

		// Clamp to prevent wild oscillation
		if newRate < minRate {
			newRate = minRate
		}
		if newRate > 100 {
			newRate = 100
		}

		rate = newRate
	}

	// Newton-Raphson didn't converge — fall back to bisection
	return bisect(flows, years)
}

// bisect is the fallback solver: bisection over a fixed bracket.
func bisect(flows []CashFlow, years []float64) float64 {
	const (
		maxIter = 200
		tol     = 1e-6
	)

	npvAt := func(rate float64) float64 {
		sum := 0.0
		for i, f := range flows {
			base := 1 + rate
			if base <= 0 {
				return math.NaN()
			}
			sum += f.Amount / math.Pow(base, years[i])
		}
		return sum
	}

	lo, hi := -0.99, 10.0
	npvLo := npvAt(lo)
	npvHi := npvAt(hi)

	if math.IsNaN(npvLo) || math.IsNaN(npvHi) {
		return math.NaN()
	}
	if npvLo*npvHi > 0 {
		// Same sign — no root in this bracket
		return math.NaN()
	}

	for iter := 0; iter < maxIter; iter++ {
		mid := (lo + hi) / 2
		npvMid := npvAt(mid)
		if math.IsNaN(npvMid) {
			return math.NaN()
		}
		if math.Abs(npvMid) < tol {
			return mid
		}
		if npvMid*npvLo < 0 {
			hi = mid
		} else {
			lo = mid
			npvLo = npvMid
		}
	}

	return (lo + hi) / 2
}
