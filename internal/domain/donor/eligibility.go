package donor

import (
	"time"

	"bloodbank-service/internal/domain/blood"
)

// CheckEligibility reports whether the donor may donate on today and, if not,
// how many days remain until NextEligibleDate.
func CheckEligibility(d *Donor, today time.Time) (eligible bool, daysRemaining int) {
	if d == nil || d.NextEligibleDate == nil {
		return true, 0
	}
	gap := blood.DaysBetween(today, *d.NextEligibleDate)
	if gap <= 0 {
		return true, 0
	}
	return false, gap
}
