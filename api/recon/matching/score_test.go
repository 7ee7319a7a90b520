package matching

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestAmountCloseness(t *testing.T) {
	tol := dec(100)

	assert.Equal(t, 1.0, amountCloseness(dec(5000), dec(5000), tol))
	assert.Equal(t, 0.5, amountCloseness(dec(5050), dec(5000), tol))
	assert.Equal(t, 0.0, amountCloseness(dec(5100), dec(5000), tol))
	assert.Equal(t, 0.0, amountCloseness(dec(5200), dec(5000), tol))
	assert.Equal(t, 0.0, amountCloseness(dec(5001), dec(5000), decimal.Zero))
}

func TestAmountCloseness_MonotonicInGap(t *testing.T) {
	tol := dec(1000)
	prev := 1.1
	for gap := int64(0); gap <= 1200; gap += 50 {
		got := amountCloseness(dec(10000+gap), dec(10000), tol)
		assert.LessOrEqual(t, got, prev, "closeness must not grow with the gap (gap=%d)", gap)
		prev = got
	}
}

func TestDateCloseness(t *testing.T) {
	assert.Equal(t, 1.0, dateCloseness(0, 5))
	assert.InDelta(t, 0.8, dateCloseness(1, 5), 1e-9)
	assert.InDelta(t, 0.8, dateCloseness(-1, 5), 1e-9)
	assert.Equal(t, 0.0, dateCloseness(5, 5))
	assert.Equal(t, 0.0, dateCloseness(6, 5))
	assert.Equal(t, 0.0, dateCloseness(1, 0))
}

func TestTextSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, textSimilarity("VIR SALAIRE MARS", "vir salaire mars"))
	assert.Equal(t, 1.0, textSimilarity("VIR. SALAIRE-MARS/2025", "vir salaire mars 2025"))
	assert.Equal(t, 1.0, textSimilarity("FOURNISSEUR ALPHA", "VIR FOURNISSEUR ALPHA REF 42"))
	assert.Equal(t, 0.0, textSimilarity("", "quelque chose"))
	assert.Equal(t, 0.0, textSimilarity("loyer", ""))

	partial := textSimilarity("loyer janvier", "loyer fevrier")
	assert.Greater(t, partial, 0.0)
	assert.Less(t, partial, 1.0)
}

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  VIR./SALAIRE  2025 ", "vir salaire 2025"},
		{"ORANGE-CM*FACT#00123", "orange cm fact 00123"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeDescription(tt.in))
	}
}

func TestTolerance_TwoRegimes(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, dec(1).Equal(cfg.Tolerance(dec(500))))
	assert.True(t, dec(1).Equal(cfg.Tolerance(dec(9999))))
	assert.True(t, dec(50).Equal(cfg.Tolerance(dec(10000))))
	assert.True(t, dec(100).Equal(cfg.Tolerance(dec(-20000))))
}

func TestBandFor(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		score int
		want  Band
	}{
		{100, BandExcellent},
		{95, BandExcellent},
		{94, BandGood},
		{80, BandGood},
		{79, BandFair},
		{70, BandFair},
		{69, BandLow},
		{50, BandLow},
		{49, BandNone},
		{0, BandNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.BandFor(tt.score), "score %d", tt.score)
	}
}

func TestScore_WeightedAndClamped(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 100, cfg.score(1, 1, 1))
	assert.Equal(t, 0, cfg.score(0, 0, 0))
	assert.Equal(t, 50, cfg.score(1, 0, 0))
	assert.Equal(t, 30, cfg.score(0, 1, 0))
	assert.Equal(t, 20, cfg.score(0, 0, 1))

	// Monotonic in each component.
	assert.GreaterOrEqual(t, cfg.score(0.9, 0.5, 0.5), cfg.score(0.8, 0.5, 0.5))
	assert.GreaterOrEqual(t, cfg.score(0.5, 0.9, 0.5), cfg.score(0.5, 0.8, 0.5))
	assert.GreaterOrEqual(t, cfg.score(0.5, 0.5, 0.9), cfg.score(0.5, 0.5, 0.8))
}

func TestNormalize_RescalesWeights(t *testing.T) {
	cfg := Config{AmountWeight: 5, DateWeight: 3, TextWeight: 2, DateWindowDays: 5, MaxComboSize: 3, Workers: 2}
	cfg.Normalize()

	assert.InDelta(t, 0.5, cfg.AmountWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.DateWeight, 1e-9)
	assert.InDelta(t, 0.2, cfg.TextWeight, 1e-9)

	degenerate := Config{}
	degenerate.Normalize()
	assert.InDelta(t, 0.5, degenerate.AmountWeight, 1e-9)
	assert.Equal(t, 1, degenerate.DateWindowDays)
	assert.Equal(t, 2, degenerate.MaxComboSize)
	assert.Equal(t, 1, degenerate.Workers)
}

func TestDayGap_IgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	nextDay := time.Date(2025, 3, 11, 0, 15, 0, 0, time.UTC)

	assert.Equal(t, 0, dayGap(morning, evening))
	assert.Equal(t, 1, dayGap(evening, nextDay))
	assert.Equal(t, 1, dayGap(nextDay, evening))
	assert.Equal(t, 31, dayGap(morning, morning.AddDate(0, 1, 1)))
}

func TestCounterpartyKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"VIR SEPA ORANGE CAMEROUN REF 123456", "vir sepa"},
		{"ORANGE CM FACTURE 00123", "orange facture"},
		{"12345 67890", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, counterpartyKey(tt.in))
	}
}
