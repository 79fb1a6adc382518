package blood

import "time"

type Group string

const (
	APos  Group = "A+"
	ANeg  Group = "A-"
	BPos  Group = "B+"
	BNeg  Group = "B-"
	OPos  Group = "O+"
	ONeg  Group = "O-"
	ABPos Group = "AB+"
	ABNeg Group = "AB-"
)

var Groups = []Group{APos, ANeg, BPos, BNeg, OPos, ONeg, ABPos, ABNeg}

func (g Group) Valid() bool {
	for _, v := range Groups {
		if v == g {
			return true
		}
	}
	return false
}

const (
	// ShelfLifeDays is the interval from donation date to unit expiry.
	ShelfLifeDays = 42
	// CooldownDays is the interval a donor must wait after a completed donation.
	CooldownDays = 90
)

// Day truncates t to midnight UTC. All stored dates go through it.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func AddDays(t time.Time, n int) time.Time { return Day(t).AddDate(0, 0, n) }

// DaysBetween returns whole days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

func ExpiryFor(donationDate time.Time) time.Time { return AddDays(donationDate, ShelfLifeDays) }

func NextEligibleAfter(donationDate time.Time) time.Time { return AddDays(donationDate, CooldownDays) }
