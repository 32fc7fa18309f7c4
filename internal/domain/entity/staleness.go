package entity

import (
	"time"
)

// IsOutdated reports whether lastUpdated falls outside the calendar day containing now,
// evaluated in now's location. The check is by calendar day, not by elapsed duration:
// 23:59 yesterday is outdated, 00:01 today is not.
func IsOutdated(lastUpdated, now time.Time) bool {
	ly, lm, ld := lastUpdated.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	return ly != ny || lm != nm || ld != nd
}
