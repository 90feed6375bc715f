package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
	pkgerrors "github.com/wayfarerhq/wayfarer-backend/pkg/errors"
	"github.com/wayfarerhq/wayfarer-backend/pkg/types"
)

// zeroDecimalCurrencies are charged in whole units on the payment provider.
var zeroDecimalCurrencies = map[enums.Currency]struct{}{
	enums.CurrencyJPY: {},
}

// ComputeGrandTotal sums the offer's base fare with every selected
// ancillary: seats count once, baggage counts amount times quantity.
// Amounts are decimal strings; float math never touches money here.
func ComputeGrandTotal(baseAmount string, services types.SelectedServices) (decimal.Decimal, error) {
	total, err := decimal.NewFromString(baseAmount)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid base amount %q", baseAmount))
	}

	for _, svc := range services {
		amount, err := decimal.NewFromString(svc.Amount)
		if err != nil {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("invalid amount %q for service %s", svc.Amount, svc.ID))
		}
		qty := svc.Quantity
		if qty < 1 {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("invalid quantity %d for service %s", qty, svc.ID))
		}
		total = total.Add(amount.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total, nil
}

// MinorUnits converts a decimal amount to the payment provider's smallest
// currency unit. Most currencies use two decimal places; zero-decimal
// currencies are charged whole.
func MinorUnits(amount decimal.Decimal, currency enums.Currency) (int64, error) {
	exp := int32(2)
	if _, ok := zeroDecimalCurrencies[currency]; ok {
		exp = 0
	}
	scaled := amount.Shift(exp)
	if !scaled.IsInteger() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("amount %s has more precision than %s allows", amount.String(), currency))
	}
	return scaled.IntPart(), nil
}
