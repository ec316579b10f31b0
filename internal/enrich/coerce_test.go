package enrich

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsPositiveNumber(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  float64
		ok    bool
	}{
		{"float", 123.5, 123.5, true},
		{"int", 50, 50, true},
		{"dollar string", "$50,000", 50000, true},
		{"k suffix", "50k", 50000, true},
		{"m suffix", "1.2m", 1200000, true},
		{"dollar k", "$50k", 50000, true},
		{"plain string", "404.51", 404.51, true},
		{"zero", 0.0, 0, false},
		{"negative", -5.0, 0, false},
		{"garbage", "half", 0, false},
		{"mixed garbage", "50 dollars", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AsPositiveNumber(tt.input)
			if !tt.ok {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 1e-9)
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	assert.Equal(t, today, NormalizeDate(""))
	assert.Equal(t, today, NormalizeDate("today"))
	assert.Equal(t, yesterday, NormalizeDate("yesterday"))
	assert.Equal(t, "2024-03-15", NormalizeDate("2024-03-15"))
	assert.Equal(t, "2024-03-15", NormalizeDate("2024/03/15"))
	// Unparseable input falls back to today rather than failing.
	assert.Equal(t, today, NormalizeDate("a week ago"))
}

func TestExtractDateFromText_UserWordsWin(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	// The model emitted today's date but the user said yesterday.
	assert.Equal(t, yesterday, ExtractDateFromText("sold half my ETH yesterday", today))
	// No relative word in the text: the structured argument stands.
	assert.Equal(t, "2024-03-15", ExtractDateFromText("sold half my ETH", "2024-03-15"))
	assert.Equal(t, today, ExtractDateFromText("sold half my ETH", ""))
}
