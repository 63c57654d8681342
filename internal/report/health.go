package report

import (
	"time"

	"github.com/jonathan/repo-scout/internal/types"
)

// Health thresholds, in days since the last push.
const (
	staleAfterDays     = 90
	abandonedAfterDays = 365
)

// DaysSincePush counts full 24-hour periods between the last push and now.
func DaysSincePush(pushedAt, now time.Time) int {
	if pushedAt.IsZero() || now.Before(pushedAt) {
		return 0
	}
	return int(now.Sub(pushedAt).Hours() / 24)
}

// ClassifyHealth maps days since the last push to a maintenance status.
// The push timestamp is used rather than the metadata update timestamp,
// which also moves on non-code activity like stars and issue edits.
func ClassifyHealth(daysSincePush int) types.HealthStatus {
	switch {
	case daysSincePush > abandonedAfterDays:
		return types.HealthAbandoned
	case daysSincePush > staleAfterDays:
		return types.HealthStale
	default:
		return types.HealthActive
	}
}
