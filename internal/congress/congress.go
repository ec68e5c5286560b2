package congress

import "time"

// CurrentCongress returns the Congress number in session at t. Each Congress
// runs for two years starting in an odd year; the 1st convened in 1789.
func CurrentCongress(t time.Time) int {
	year := t.Year()
	if year%2 == 0 {
		year--
	}
	return ((year - 1789) / 2) + 1
}

// CongressYears returns the first and last calendar year of a Congress.
func CongressYears(number int) (int, int) {
	start := 1789 + (number-1)*2
	return start, start + 1
}
