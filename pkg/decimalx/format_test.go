package decimalx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"65000.123", "$65,000.12"},
		{"1234567.5", "$1,234,567.50"},
		{"189.3", "$189.30"},
		{"1", "$1.00"},
		{"0.5", "$0.50"},
		{"0.00012345", "$0.00012345"},
		{"0.123456789", "$0.12345679"},
		{"0", "$0.00"},
		{"-1500", "-$1,500.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPrice(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatChange(t *testing.T) {
	assert.Equal(t, "N/A", FormatChange(decimal.NullDecimal{}))
	assert.Equal(t, "🔺2.50%", FormatChange(decimal.NewNullDecimal(decimal.RequireFromString("2.5"))))
	assert.Equal(t, "🔺0.00%", FormatChange(decimal.NewNullDecimal(decimal.Zero)))
	assert.Equal(t, "🔻1.23%", FormatChange(decimal.NewNullDecimal(decimal.RequireFromString("-1.2345"))))
}

func TestFormatTarget(t *testing.T) {
	assert.Equal(t, "50,000.00", FormatTarget(decimal.RequireFromString("50000")))
	assert.Equal(t, "0.015", FormatTarget(decimal.RequireFromString("0.015")))
}

func TestGroup(t *testing.T) {
	assert.Equal(t, "123", Group("123"))
	assert.Equal(t, "1,234", Group("1234"))
	assert.Equal(t, "123,456.78", Group("123456.78"))
	assert.Equal(t, "-12,345", Group("-12345"))
	assert.Equal(t, "", Group(""))
}
