package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCheckAmount(t *testing.T) {
	for _, ok := range []string{"0", "236", "1234.5", "1234.50", "1.500", "9999999999.99"} {
		if err := CheckAmount("totalPrice", decimal.RequireFromString(ok)); err != nil {
			t.Fatalf("%s: unexpected error %v", ok, err)
		}
	}
	for _, bad := range []string{"-0.01", "1234.567", "0.001", "10000000000", "12345678901234"} {
		err := CheckAmount("totalPrice", decimal.RequireFromString(bad))
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", bad, err)
		}
	}
}

func TestImportLeavesDecimalJSONDefault(t *testing.T) {
	if decimal.MarshalJSONWithoutQuotes {
		t.Fatal("importing domain must not change decimal JSON encoding")
	}
}
