package engine

import (
	"fmt"
	"time"
)

// DateFormat is the wire format for end_date parameters.
const DateFormat = "2006-01-02"

// SearchWindow resolves a period_days/end_date pair into since/until dates.
// until is zero when no end date was given (the window ends "now").
func SearchWindow(periodDays int, endDate string, now time.Time) (since, until time.Time, err error) {
	if periodDays < 1 {
		return time.Time{}, time.Time{}, fmt.Errorf("period_days must be 1 or more, got %d", periodDays)
	}
	end := now
	if endDate != "" {
		end, err = time.Parse(DateFormat, endDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end_date must be in YYYY-MM-DD format: %q", endDate)
		}
		until = end
	}
	since = end.AddDate(0, 0, -periodDays)
	return since, until, nil
}
