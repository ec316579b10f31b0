package utils

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$50,000.00", FormatMoney(50000))
	assert.Equal(t, "$407.00", FormatMoney(407))
	assert.Equal(t, "$1,234,567.89", FormatMoney(1234567.89))
	assert.Equal(t, "-$12.50", FormatMoney(-12.5))
	assert.Equal(t, "$0.00", FormatMoney(0))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "122.85", FormatAmount(122.85))
	assert.Equal(t, "0.5", FormatAmount(0.5))
	assert.Equal(t, "4", FormatAmount(4))
	assert.Equal(t, "0.00000001", FormatAmount(1e-8))
	assert.Equal(t, "0", FormatAmount(0))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "50%", FormatPercent(0.5))
	assert.Equal(t, "4.5%", FormatPercent(0.045))
	assert.Equal(t, "0.12%", FormatPercent(0.0012))
}

// FormatMoney must preserve the numeric value when parsed back after
// stripping separators, and always carry exactly two decimals.
func TestProperty_MoneyFormattingRoundTrips(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("value survives the round trip", prop.ForAll(
		func(v float64) bool {
			if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 1e12 {
				return true
			}
			formatted := FormatMoney(v)

			cleaned := strings.NewReplacer("$", "", ",", "").Replace(formatted)
			parsed, err := strconv.ParseFloat(cleaned, 64)
			if err != nil {
				t.Logf("unparseable output %q for %f", formatted, v)
				return false
			}
			if math.Abs(parsed-v) > 0.005+math.Abs(v)*1e-9 {
				t.Logf("value drifted: %f -> %q -> %f", v, formatted, parsed)
				return false
			}

			parts := strings.Split(formatted, ".")
			return len(parts) == 2 && len(parts[1]) == 2
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.TestingRun(t)
}
