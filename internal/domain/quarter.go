package domain

import "time"

// Quarter identifies a 3-calendar-month accounting period. Index is zero-based:
// Jan-Mar = 0, Apr-Jun = 1, Jul-Sep = 2, Oct-Dec = 3.
type Quarter struct {
	Year  int
	Index int
}

// QuarterOf derives the quarter a point in time belongs to. The caller passes
// the date explicitly; there is no hidden clock dependency anywhere below this.
func QuarterOf(t time.Time) Quarter {
	return Quarter{
		Year:  t.Year(),
		Index: (int(t.Month()) - 1) / 3,
	}
}

// Start is the first instant of the quarter.
func (q Quarter) Start() time.Time {
	return time.Date(q.Year, time.Month(q.Index*3+1), 1, 0, 0, 0, 0, time.UTC)
}

// End is the first instant of the following quarter. Matches belong to the
// quarter when Start <= createdAt < End.
func (q Quarter) End() time.Time {
	return q.Start().AddDate(0, 3, 0)
}

// Contains reports whether t falls inside the quarter window.
func (q Quarter) Contains(t time.Time) bool {
	return !t.Before(q.Start()) && t.Before(q.End())
}

// IsFirstDay reports whether t is the first calendar day of a quarter.
func IsFirstDay(t time.Time) bool {
	m := t.Month()
	return t.Day() == 1 && (m == time.January || m == time.April || m == time.July || m == time.October)
}
