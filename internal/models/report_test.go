package models

import "testing"

func TestCashFlowSeries_NetInvestment(t *testing.T) {
	series := CashFlowSeries{
		{Date: "2024-01-10", Amount: -1000},
		{Date: "2024-02-01", Amount: -500},
		{Date: "2024-03-20", Amount: 300},
	}
	if got := series.NetInvestment(); got != 1200 {
		t.Errorf("NetInvestment = %.2f, want 1200", got)
	}
}

func TestCashFlowSeries_NetInvestment_Empty(t *testing.T) {
	var series CashFlowSeries
	if got := series.NetInvestment(); got != 0 {
		t.Errorf("NetInvestment of empty series = %.2f, want 0", got)
	}
}

func TestOrder_Filled(t *testing.T) {
	if !(Order{State: OrderStateFilled}).Filled() {
		t.Error("filled order reported unfilled")
	}
	for _, state := range []string{"cancelled", "queued", "confirmed", ""} {
		if (Order{State: state}).Filled() {
			t.Errorf("state %q reported filled", state)
		}
	}
}
