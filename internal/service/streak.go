package service

import "time"

// ComputeStreak derives the habit's new streak from the previous one and the
// two most recent completion timestamps. Calendar days are compared after
// midnight truncation in UTC; the day boundary is part of the contract.
//
// First ever completion (no previous timestamp) starts a streak of 1.
// A completion on the next calendar day extends the streak, a second
// completion on the same day keeps it flat, and anything else resets it to 1.
// A backfilled timestamp older than the previous log lands in the reset
// branch too (negative day diff), no chronological re-derivation happens.
func ComputeStreak(previousStreak int, mostRecent time.Time, secondMostRecent *time.Time) int {
	if secondMostRecent == nil {
		return 1
	}
	diffDays := int(dateOf(mostRecent).Sub(dateOf(*secondMostRecent)).Hours() / 24)
	switch diffDays {
	case 1:
		return previousStreak + 1
	case 0:
		return previousStreak
	default:
		return 1
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
