package decimal_test

import (
	"testing"
	"time"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rezonia/nfe-converter/internal/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "10.50", "10.5"},
		{"four decimals", "2.0000", "2"},
		{"surrounding spaces", "  21.00\n", "21"},
		{"comma separator", "10,50", "10.5"},
		{"empty", "", "0"},
		{"whitespace only", "   ", "0"},
		{"non-numeric", "abc", "0"},
		{"negative clamped", "-5.00", "0"},
		{"thousands and comma", "1.234,56", "0"},
		{"exponent", "1e5", "0"},
		{"exponent overflowing float", "1e400", "0"},
		{"huge negative exponent", "1E-999999999", "0"},
		{"huge exponent", "1e50000000", "0"},
		{"infinity", "Infinity", "0"},
		{"nan", "NaN", "0"},
		{"explicit plus", "+10.00", "0"},
		{"leading dot", ".5", "0"},
		{"trailing dot", "5.", "0"},
		{"fifteen integer digits", "123456789012345.67", "123456789012345.67"},
		{"too many integer digits", "1234567890123456", "0"},
		{"ten fraction digits", "1.0123456789", "1.0123456789"},
		{"too many fraction digits", "1.01234567890", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decimal.ParseAmount(tt.input)
			assert.True(t, got.Equal(dec.RequireFromString(tt.expected)),
				"ParseAmount(%q) = %s, want %s", tt.input, got.String(), tt.expected)
		})
	}
}

func TestParseAmount_ExponentReturnsQuickly(t *testing.T) {
	done := make(chan dec.Decimal, 1)
	go func() { done <- decimal.ParseAmount("1e50000000") }()

	select {
	case got := <-done:
		assert.True(t, got.IsZero())
		assert.Equal(t, float64(0), got.InexactFloat64())
	case <-time.After(2 * time.Second):
		t.Fatal("ParseAmount did not return")
	}
}

func TestSum(t *testing.T) {
	values := []dec.Decimal{
		dec.NewFromInt(100),
		dec.RequireFromString("200.25"),
		dec.NewFromInt(300),
	}
	assert.True(t, decimal.Sum(values).Equal(dec.RequireFromString("600.25")))

	assert.True(t, decimal.Sum(nil).IsZero())
}

func TestIsPositive(t *testing.T) {
	assert.True(t, decimal.IsPositive(dec.NewFromInt(1)))
	assert.False(t, decimal.IsPositive(dec.Zero))
	assert.False(t, decimal.IsPositive(dec.NewFromInt(-1)))
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, decimal.WithinTolerance(dec.RequireFromString("21.00"), dec.RequireFromString("21.01")))
	assert.False(t, decimal.WithinTolerance(dec.RequireFromString("21.00"), dec.RequireFromString("21.02")))
}
