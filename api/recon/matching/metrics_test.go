package matching

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reportFrom = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
var reportTo = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func sug(band Band, status SuggestionStatus, reason string, created time.Time) Suggestion {
	return Suggestion{
		SuggestionID:    "sug-" + string(band) + "-" + created.Format("020115.000000"),
		Band:            band,
		Status:          status,
		RejectionReason: reason,
		CreatedAt:       created,
	}
}

func decided(s Suggestion, by string, after time.Duration) Suggestion {
	at := s.CreatedAt.Add(after)
	s.DecidedBy = by
	s.DecidedAt = &at
	return s
}

func TestBuildReport_PrecisionAndBands(t *testing.T) {
	d1 := reportFrom.AddDate(0, 0, 2)
	suggestions := []Suggestion{
		decided(sug(BandExcellent, SuggestionApplied, "", d1), "jdoe", time.Hour),
		decided(sug(BandExcellent, SuggestionApplied, "", d1.Add(time.Minute)), "jdoe", time.Hour),
		decided(sug(BandLow, SuggestionRejected, "amount mismatch", d1.Add(2*time.Minute)), "asmith", 2*time.Hour),
		sug(BandGood, SuggestionPending, "", d1.Add(3*time.Minute)),
	}

	r := BuildReport(suggestions, reportFrom, reportTo)

	assert.Equal(t, 4, r.Generated)
	assert.Equal(t, 2, r.Applied)
	assert.Equal(t, 1, r.Rejected)
	assert.Equal(t, 1, r.Pending)
	assert.InDelta(t, 0.5, r.Precision, 1e-9)

	require.Len(t, r.Bands, 3)
	assert.Equal(t, BandExcellent, r.Bands[0].Band)
	assert.Equal(t, BandGood, r.Bands[1].Band)
	assert.Equal(t, BandLow, r.Bands[2].Band)
	assert.InDelta(t, 1.0, r.Bands[0].ApplicationRate, 1e-9)
	assert.InDelta(t, 0.0, r.Bands[2].ApplicationRate, 1e-9)

	require.Len(t, r.RejectionReasons, 1)
	assert.Equal(t, "amount mismatch", r.RejectionReasons[0].Reason)
	assert.Equal(t, 1, r.RejectionReasons[0].Count)
}

func TestBuildReport_TopRejectionReasonsCapped(t *testing.T) {
	d1 := reportFrom.AddDate(0, 0, 1)
	var suggestions []Suggestion
	add := func(reason string, n int) {
		for i := 0; i < n; i++ {
			suggestions = append(suggestions, sug(BandFair, SuggestionRejected, reason, d1.Add(time.Duration(len(suggestions))*time.Minute)))
		}
	}
	add("amount mismatch", 3)
	add("wrong counterparty", 2)
	add("duplicate", 1)
	add("already settled", 1)
	add("manual entry", 1)
	add("out of period", 1)

	r := BuildReport(suggestions, reportFrom, reportTo)

	require.Len(t, r.RejectionReasons, 5, "only the top reasons are reported")
	assert.Equal(t, "amount mismatch", r.RejectionReasons[0].Reason)
	assert.Equal(t, 3, r.RejectionReasons[0].Count)
	assert.Equal(t, "wrong counterparty", r.RejectionReasons[1].Reason)
	// Ties break alphabetically.
	assert.Equal(t, "already settled", r.RejectionReasons[2].Reason)
}

func TestBuildReport_DailyMonthlyAndVolumeBuckets(t *testing.T) {
	quiet := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)
	busy := time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)

	var suggestions []Suggestion
	for i := 0; i < 3; i++ {
		suggestions = append(suggestions, sug(BandGood, SuggestionApplied, "", quiet.Add(time.Duration(i)*time.Minute)))
	}
	for i := 0; i < 25; i++ {
		status := SuggestionApplied
		if i >= 5 {
			status = SuggestionRejected
		}
		suggestions = append(suggestions, sug(BandFair, status, "bruit", busy.Add(time.Duration(i)*time.Minute)))
	}

	r := BuildReport(suggestions, reportFrom, reportTo)

	require.Len(t, r.Daily, 2)
	assert.Equal(t, "2025-06-03", r.Daily[0].Period)
	assert.Equal(t, 3, r.Daily[0].Generated)
	assert.InDelta(t, 1.0, r.Daily[0].Precision, 1e-9)
	assert.Equal(t, "2025-06-04", r.Daily[1].Period)
	assert.Equal(t, 25, r.Daily[1].Generated)
	assert.InDelta(t, 0.2, r.Daily[1].Precision, 1e-9)

	require.Len(t, r.Monthly, 1)
	assert.Equal(t, "2025-06", r.Monthly[0].Period)
	assert.Equal(t, 28, r.Monthly[0].Generated)

	require.Len(t, r.VolumeBuckets, 2)
	assert.Equal(t, "1-20", r.VolumeBuckets[0].Label)
	assert.Equal(t, 1, r.VolumeBuckets[0].Days)
	assert.InDelta(t, 1.0, r.VolumeBuckets[0].Precision, 1e-9)
	assert.Equal(t, "21-100", r.VolumeBuckets[1].Label)
	assert.Equal(t, 1, r.VolumeBuckets[1].Days)
	assert.InDelta(t, 0.2, r.VolumeBuckets[1].Precision, 1e-9)
}

func TestBuildReport_ReviewerStats(t *testing.T) {
	d1 := reportFrom.AddDate(0, 0, 5)
	suggestions := []Suggestion{
		decided(sug(BandExcellent, SuggestionApplied, "", d1), "jdoe", time.Hour),
		decided(sug(BandGood, SuggestionApplied, "", d1.Add(time.Minute)), "jdoe", 3*time.Hour),
		decided(sug(BandLow, SuggestionRejected, "bruit", d1.Add(2*time.Minute)), "jdoe", 2*time.Hour),
		decided(sug(BandGood, SuggestionRejected, "bruit", d1.Add(3*time.Minute)), "asmith", 30*time.Minute),
	}

	r := BuildReport(suggestions, reportFrom, reportTo)

	require.Len(t, r.Reviewers, 2)
	top := r.Reviewers[0]
	assert.Equal(t, "jdoe", top.Actor)
	assert.Equal(t, 3, top.Reviewed)
	assert.Equal(t, 2, top.Applied)
	assert.InDelta(t, 2.0/3.0, top.ApplicationRate, 1e-9)
	assert.Equal(t, 2*time.Hour, top.AvgDecisionTime)

	assert.Equal(t, "asmith", r.Reviewers[1].Actor)
	assert.Equal(t, 30*time.Minute, r.Reviewers[1].AvgDecisionTime)
}

func TestBuildReport_Recommendations(t *testing.T) {
	d1 := reportFrom.AddDate(0, 0, 10)
	var suggestions []Suggestion
	for i := 0; i < 20; i++ {
		suggestions = append(suggestions, sug(BandExcellent, SuggestionApplied, "", d1.Add(time.Duration(i)*time.Minute)))
	}
	for i := 0; i < 30; i++ {
		status := SuggestionRejected
		reason := "faux positif"
		if i < 2 {
			status = SuggestionApplied
			reason = ""
		}
		suggestions = append(suggestions, sug(BandLow, status, reason, d1.Add(time.Duration(100+i)*time.Minute)))
	}

	r := BuildReport(suggestions, reportFrom, reportTo)

	joined := strings.Join(r.Recommendations, "\n")
	assert.Contains(t, joined, "auto-apply")
	assert.Contains(t, joined, "emission threshold")
	assert.Contains(t, joined, "matching tolerances", "a dominant rejection reason should flag the tolerances")
}

func TestBuildReport_Empty(t *testing.T) {
	r := BuildReport(nil, reportFrom, reportTo)

	assert.Zero(t, r.Generated)
	assert.Zero(t, r.Precision)
	assert.Empty(t, r.Bands)
	assert.Empty(t, r.RejectionReasons)
	assert.Empty(t, r.VolumeBuckets)
	assert.Empty(t, r.Reviewers)
	assert.Empty(t, r.Recommendations)
}
