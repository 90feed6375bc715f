package checkout

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
	"github.com/wayfarerhq/wayfarer-backend/pkg/types"
)

func TestComputeGrandTotal(t *testing.T) {
	services := types.SelectedServices{
		{ID: "ase_1", Type: enums.ServiceTypeSeat, Quantity: 1, Amount: "25.00", Currency: "USD", PassengerID: "pas_1", SegmentID: "seg_1", Designator: "12A"},
		{ID: "bag_1", Type: enums.ServiceTypeBaggage, Quantity: 2, Amount: "40.00", Currency: "USD", PassengerID: "pas_1", SegmentID: "seg_1"},
	}

	total, err := ComputeGrandTotal("500.00", services)
	if err != nil {
		t.Fatalf("ComputeGrandTotal: %v", err)
	}
	if got := total.StringFixed(2); got != "605.00" {
		t.Fatalf("total = %s, want 605.00", got)
	}
}

func TestComputeGrandTotalNoServices(t *testing.T) {
	total, err := ComputeGrandTotal("350.00", nil)
	if err != nil {
		t.Fatalf("ComputeGrandTotal: %v", err)
	}
	if got := total.StringFixed(2); got != "350.00" {
		t.Fatalf("total = %s, want 350.00", got)
	}
}

func TestComputeGrandTotalRejectsBadInputs(t *testing.T) {
	if _, err := ComputeGrandTotal("abc", nil); err == nil {
		t.Fatal("expected error for invalid base amount")
	}
	bad := types.SelectedServices{{ID: "ase_1", Quantity: 1, Amount: "nope"}}
	if _, err := ComputeGrandTotal("100.00", bad); err == nil {
		t.Fatal("expected error for invalid service amount")
	}
	zero := types.SelectedServices{{ID: "bag_1", Quantity: 0, Amount: "40.00"}}
	if _, err := ComputeGrandTotal("100.00", zero); err == nil {
		t.Fatal("expected error for zero quantity")
	}
}

func TestComputeGrandTotalAvoidsFloatDrift(t *testing.T) {
	services := types.SelectedServices{
		{ID: "ase_1", Quantity: 1, Amount: "0.10"},
		{ID: "ase_2", Quantity: 1, Amount: "0.20"},
	}
	total, err := ComputeGrandTotal("0.00", services)
	if err != nil {
		t.Fatalf("ComputeGrandTotal: %v", err)
	}
	if got := total.StringFixed(2); got != "0.30" {
		t.Fatalf("total = %s, want 0.30", got)
	}
}

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		amount   string
		currency enums.Currency
		want     int64
	}{
		{"605.00", enums.CurrencyUSD, 60500},
		{"350.00", enums.CurrencyAUD, 35000},
		{"0.50", enums.CurrencyEUR, 50},
		{"12000", enums.CurrencyJPY, 12000},
	}
	for _, tc := range cases {
		amount, err := decimal.NewFromString(tc.amount)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.amount, err)
		}
		got, err := MinorUnits(amount, tc.currency)
		if err != nil {
			t.Fatalf("MinorUnits(%s %s): %v", tc.amount, tc.currency, err)
		}
		if got != tc.want {
			t.Fatalf("MinorUnits(%s %s) = %d, want %d", tc.amount, tc.currency, got, tc.want)
		}
	}
}

func TestMinorUnitsRejectsExcessPrecision(t *testing.T) {
	amount, err := decimal.NewFromString("10.005")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := MinorUnits(amount, enums.CurrencyUSD); err == nil {
		t.Fatal("expected precision error")
	}

	yen, err := decimal.NewFromString("1200.5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := MinorUnits(yen, enums.CurrencyJPY); err == nil {
		t.Fatal("expected precision error for fractional yen")
	}
}
