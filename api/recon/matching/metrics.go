package matching

import (
	"fmt"
	"sort"
	"time"
)

// Report is the read-side quality picture of the matching engine over a date
// range. Everything in it is derived from the suggestion trail; building a
// Report never mutates anything.
type Report struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Generated int `json:"generated"`
	Applied   int `json:"applied"`
	Rejected  int `json:"rejected"`
	Pending   int `json:"pending"`

	// Precision is applied over generated, in [0,1].
	Precision float64 `json:"precision"`

	Bands            []BandStats      `json:"bands"`
	RejectionReasons []ReasonCount    `json:"rejection_reasons"`
	VolumeBuckets    []VolumeBucket   `json:"volume_buckets"`
	Daily            []PeriodStats    `json:"daily"`
	Monthly          []PeriodStats    `json:"monthly"`
	Reviewers        []ReviewerStats  `json:"reviewers"`
	Recommendations  []string         `json:"recommendations"`
}

type BandStats struct {
	Band            Band    `json:"band"`
	Generated       int     `json:"generated"`
	Applied         int     `json:"applied"`
	Rejected        int     `json:"rejected"`
	ApplicationRate float64 `json:"application_rate"`
}

type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// VolumeBucket segments days by how many suggestions the engine produced that
// day, to surface quality degradation under load.
type VolumeBucket struct {
	Label     string  `json:"label"`
	Days      int     `json:"days"`
	Generated int     `json:"generated"`
	Applied   int     `json:"applied"`
	Precision float64 `json:"precision"`
}

type PeriodStats struct {
	Period    string  `json:"period"`
	Generated int     `json:"generated"`
	Applied   int     `json:"applied"`
	Rejected  int     `json:"rejected"`
	Precision float64 `json:"precision"`
}

type ReviewerStats struct {
	Actor           string        `json:"actor"`
	Reviewed        int           `json:"reviewed"`
	Applied         int           `json:"applied"`
	ApplicationRate float64       `json:"application_rate"`
	AvgDecisionTime time.Duration `json:"avg_decision_time"`
}

const topReasons = 5

// BuildReport aggregates the given suggestions, assumed pre-filtered to the
// [from, to) creation window by the caller.
func BuildReport(suggestions []Suggestion, from, to time.Time) Report {
	r := Report{From: from, To: to, Generated: len(suggestions)}

	bandIndex := map[Band]*BandStats{}
	reasons := map[string]int{}
	dayStats := map[string]*PeriodStats{}
	monthStats := map[string]*PeriodStats{}
	reviewerIndex := map[string]*reviewerAccum{}

	for _, sg := range suggestions {
		bs := bandIndex[sg.Band]
		if bs == nil {
			bs = &BandStats{Band: sg.Band}
			bandIndex[sg.Band] = bs
		}
		bs.Generated++

		day := sg.CreatedAt.Format("2006-01-02")
		month := sg.CreatedAt.Format("2006-01")
		ds := periodFor(dayStats, day)
		ms := periodFor(monthStats, month)
		ds.Generated++
		ms.Generated++

		switch sg.Status {
		case SuggestionApplied:
			r.Applied++
			bs.Applied++
			ds.Applied++
			ms.Applied++
		case SuggestionRejected:
			r.Rejected++
			bs.Rejected++
			ds.Rejected++
			ms.Rejected++
			if sg.RejectionReason != "" {
				reasons[sg.RejectionReason]++
			}
		default:
			r.Pending++
		}

		if sg.DecidedBy != "" && sg.DecidedAt != nil {
			ra := reviewerIndex[sg.DecidedBy]
			if ra == nil {
				ra = &reviewerAccum{}
				reviewerIndex[sg.DecidedBy] = ra
			}
			ra.reviewed++
			ra.totalTime += sg.DecidedAt.Sub(sg.CreatedAt)
			if sg.Status == SuggestionApplied {
				ra.applied++
			}
		}
	}

	r.Precision = ratio(r.Applied, r.Generated)
	r.Bands = bandSlice(bandIndex)
	r.RejectionReasons = topRejectionReasons(reasons, topReasons)
	r.Daily = periodSlice(dayStats)
	r.Monthly = periodSlice(monthStats)
	r.VolumeBuckets = volumeBuckets(r.Daily)
	r.Reviewers = reviewerSlice(reviewerIndex)
	r.Recommendations = recommend(r)
	return r
}

type reviewerAccum struct {
	reviewed  int
	applied   int
	totalTime time.Duration
}

func periodFor(m map[string]*PeriodStats, key string) *PeriodStats {
	ps := m[key]
	if ps == nil {
		ps = &PeriodStats{Period: key}
		m[key] = ps
	}
	return ps
}

func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

var bandOrder = map[Band]int{BandExcellent: 0, BandGood: 1, BandFair: 2, BandLow: 3}

func bandSlice(index map[Band]*BandStats) []BandStats {
	out := make([]BandStats, 0, len(index))
	for _, bs := range index {
		bs.ApplicationRate = ratio(bs.Applied, bs.Generated)
		out = append(out, *bs)
	}
	sort.Slice(out, func(i, j int) bool { return bandOrder[out[i].Band] < bandOrder[out[j].Band] })
	return out
}

func topRejectionReasons(counts map[string]int, n int) []ReasonCount {
	out := make([]ReasonCount, 0, len(counts))
	for reason, count := range counts {
		out = append(out, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func periodSlice(m map[string]*PeriodStats) []PeriodStats {
	out := make([]PeriodStats, 0, len(m))
	for _, ps := range m {
		ps.Precision = ratio(ps.Applied, ps.Generated)
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// Volume tiers are daily suggestion counts. The bounds are coarse on purpose:
// the report only needs to show whether precision drops on heavy days.
var volumeTiers = []struct {
	label string
	max   int
}{
	{"1-20", 20},
	{"21-100", 100},
	{"101+", 1 << 30},
}

func volumeBuckets(daily []PeriodStats) []VolumeBucket {
	buckets := make([]VolumeBucket, len(volumeTiers))
	for i, tier := range volumeTiers {
		buckets[i].Label = tier.label
	}
	for _, day := range daily {
		for i, tier := range volumeTiers {
			if day.Generated <= tier.max {
				buckets[i].Days++
				buckets[i].Generated += day.Generated
				buckets[i].Applied += day.Applied
				break
			}
		}
	}
	out := buckets[:0]
	for _, b := range buckets {
		if b.Days == 0 {
			continue
		}
		b.Precision = ratio(b.Applied, b.Generated)
		out = append(out, b)
	}
	return out
}

func reviewerSlice(index map[string]*reviewerAccum) []ReviewerStats {
	out := make([]ReviewerStats, 0, len(index))
	for actor, ra := range index {
		stats := ReviewerStats{
			Actor:           actor,
			Reviewed:        ra.reviewed,
			Applied:         ra.applied,
			ApplicationRate: ratio(ra.applied, ra.reviewed),
		}
		if ra.reviewed > 0 {
			stats.AvgDecisionTime = ra.totalTime / time.Duration(ra.reviewed)
		}
		out = append(out, stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reviewed > out[j].Reviewed })
	return out
}

// Recommendation rules only fire on enough history to be meaningful.
const (
	autoApplyMinSamples   = 20
	autoApplyMinPrecision = 0.98
	lowBandNoiseRate      = 0.10
	lowBandMinSamples     = 30
)

func recommend(r Report) []string {
	recs := []string{}
	for _, bs := range r.Bands {
		decided := bs.Applied + bs.Rejected
		if bs.Band == BandExcellent && decided >= autoApplyMinSamples &&
			ratio(bs.Applied, decided) >= autoApplyMinPrecision {
			recs = append(recs, fmt.Sprintf(
				"enable auto-apply for EXCELLENT suggestions: %d of %d reviewed were applied",
				bs.Applied, decided))
		}
		if bs.Band == BandLow && bs.Generated >= lowBandMinSamples &&
			bs.ApplicationRate <= lowBandNoiseRate {
			recs = append(recs, fmt.Sprintf(
				"raise the emission threshold: only %.0f%% of LOW suggestions were applied",
				bs.ApplicationRate*100))
		}
	}
	if len(r.RejectionReasons) > 0 && r.Generated > 0 {
		top := r.RejectionReasons[0]
		if float64(top.Count) >= 0.25*float64(r.Generated) {
			recs = append(recs, fmt.Sprintf(
				"review matching tolerances: %q accounts for %d of %d suggestions",
				top.Reason, top.Count, r.Generated))
		}
	}
	return recs
}
