package matching

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// amountCloseness maps the gap between two amounts onto [0,1], where 1 is an
// exact match and 0 sits at the edge of the tolerance band. Anything outside
// the band is not a candidate in the first place.
func amountCloseness(a, b, tolerance decimal.Decimal) float64 {
	diff := a.Sub(b).Abs()
	if diff.IsZero() {
		return 1
	}
	if tolerance.IsZero() || diff.GreaterThan(tolerance) {
		return 0
	}
	ratio, _ := diff.Div(tolerance).Float64()
	return 1 - math.Min(1, ratio)
}

// dateCloseness maps the day gap onto [0,1] over the configured window.
func dateCloseness(days, windowDays int) float64 {
	if days < 0 {
		days = -days
	}
	if windowDays <= 0 || days > windowDays {
		return 0
	}
	return 1 - float64(days)/float64(windowDays)
}

// textSimilarity compares two free-text descriptions. Containment after
// normalization counts as a full match; otherwise the Levenshtein ratio over
// the longer string is used.
func textSimilarity(a, b string) float64 {
	na := normalizeDescription(a)
	nb := normalizeDescription(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb || strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 1
	}
	distance := levenshtein.DistanceForStrings([]rune(na), []rune(nb), levenshtein.DefaultOptions)
	longest := len([]rune(na))
	if l := len([]rune(nb)); l > longest {
		longest = l
	}
	sim := 1 - float64(distance)/float64(longest)
	if sim < 0 {
		return 0
	}
	return sim
}

func normalizeDescription(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace && b.Len() > 0 {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// score combines the three closeness components into a [0,100] confidence.
// It is monotonic in every component: a tighter amount gap, a closer date or
// a more similar description never lowers the score.
func (c Config) score(amount, date, text float64) int {
	raw := 100 * (c.AmountWeight*amount + c.DateWeight*date + c.TextWeight*text)
	s := int(math.Round(raw))
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// dayGap counts whole calendar days between two dates, ignoring time of day.
func dayGap(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	gap := int(ad.Sub(bd).Hours() / 24)
	if gap < 0 {
		return -gap
	}
	return gap
}
