package presenter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

func TestAmount_RoundsToMinorUnit(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency domain.Currency
		want     string
	}{
		{"usd cents", "6300.005", domain.CurrencyUSD, "6300.01"},
		{"ils agorot", "1036", domain.CurrencyILS, "1036.00"},
		{"yen has no minor unit", "1234.5", domain.Currency("JPY"), "1235"},
		{"unknown currency defaults to two digits", "1.234", domain.Currency("XYZ"), "1.23"},
		{"mixed portfolio has no currency", "99.999", domain.Currency(""), "100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Amount(decimal.RequireFromString(tt.amount), tt.currency))
		})
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "$1,234.50", Display(decimal.RequireFromString("1234.5"), domain.CurrencyUSD))
	assert.Equal(t, "-$1,234.50", Display(decimal.RequireFromString("-1234.499"), domain.CurrencyUSD))
	assert.Equal(t, "10.00 XYZ", Display(decimal.NewFromInt(10), domain.Currency("XYZ")))
}

func TestPriceAndPercent(t *testing.T) {
	assert.Equal(t, "0.725", Price(decimal.RequireFromString("0.725")))
	assert.Equal(t, "175.1235", Price(decimal.RequireFromString("175.12345")))
	assert.Equal(t, "33.33", Percent(decimal.RequireFromString("33.33333333")))
	assert.Equal(t, "5.00", Percent(decimal.NewFromInt(5)))
}
