package matching

import (
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config holds the tunable knobs of the matching engine. The defaults are a
// starting point and are expected to be adjusted against live data per company.
type Config struct {
	// DateWindowDays bounds how far apart a transaction and an entry may be.
	DateWindowDays int

	// Amount tolerance: absolute for small amounts, percentage for large ones.
	// SmallAmountCutoff separates the two regimes.
	AbsoluteTolerance decimal.Decimal
	PercentTolerance  decimal.Decimal
	SmallAmountCutoff decimal.Decimal

	// Score weights. They must sum to 1; Normalize rescales if they do not.
	AmountWeight float64
	DateWeight   float64
	TextWeight   float64

	// Band thresholds over the [0,100] score.
	ExcellentThreshold int
	GoodThreshold      int
	FairThreshold      int
	LowThreshold       int

	// Multi-way search limits. Combined matches never score above the GOOD
	// ceiling, and each extra leg costs ComboPenalty points.
	MaxComboSize int
	ComboPenalty int

	// Workers is the scoring fan-out width.
	Workers int
}

// DefaultConfig returns the engine defaults, with env overrides for the knobs
// operators most often tune.
func DefaultConfig() Config {
	cfg := Config{
		DateWindowDays:     5,
		AbsoluteTolerance:  decimal.NewFromInt(1),
		PercentTolerance:   decimal.NewFromFloat(0.005),
		SmallAmountCutoff:  decimal.NewFromInt(10000),
		AmountWeight:       0.5,
		DateWeight:         0.3,
		TextWeight:         0.2,
		ExcellentThreshold: 95,
		GoodThreshold:      80,
		FairThreshold:      70,
		LowThreshold:       50,
		MaxComboSize:       3,
		ComboPenalty:       5,
		Workers:            4,
	}
	if v := os.Getenv("MATCHING_DATE_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DateWindowDays = n
		}
	}
	if v := os.Getenv("MATCHING_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	return cfg
}

// Normalize rescales the weights to sum to 1 and floors degenerate limits.
func (c *Config) Normalize() {
	sum := c.AmountWeight + c.DateWeight + c.TextWeight
	if sum <= 0 {
		c.AmountWeight, c.DateWeight, c.TextWeight = 0.5, 0.3, 0.2
		sum = 1
	}
	c.AmountWeight /= sum
	c.DateWeight /= sum
	c.TextWeight /= sum

	if c.DateWindowDays <= 0 {
		c.DateWindowDays = 1
	}
	if c.MaxComboSize < 2 {
		c.MaxComboSize = 2
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
}

// Tolerance returns the allowed amount gap for a given magnitude: a flat
// tolerance below the cutoff, a percentage above it. Bank fees and rounding
// scale with the amount, the tolerance does too.
func (c Config) Tolerance(amount decimal.Decimal) decimal.Decimal {
	mag := amount.Abs()
	if mag.LessThan(c.SmallAmountCutoff) {
		return c.AbsoluteTolerance
	}
	return mag.Mul(c.PercentTolerance)
}

// BandFor maps a score to its confidence band. Scores under the LOW threshold
// are not emitted at all.
func (c Config) BandFor(score int) Band {
	switch {
	case score >= c.ExcellentThreshold:
		return BandExcellent
	case score >= c.GoodThreshold:
		return BandGood
	case score >= c.FairThreshold:
		return BandFair
	case score >= c.LowThreshold:
		return BandLow
	default:
		return BandNone
	}
}
