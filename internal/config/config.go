package config

const (
	DefaultTimeZone = "Africa/Douala"

	// Matching sweep defaults
	DefaultMatchingSchedule = "0 20 * * *" // 8 PM daily, after statement imports
	MatchingWindowDays      = 35
	MatchingBatchSize       = 200
)
