package gamification

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// CalendarDay formats t as YYYY-MM-DD in t's own location.
func CalendarDay(t time.Time) string {
	return t.Format(dayLayout)
}

// PreviousDay returns the calendar day before t.
func PreviousDay(t time.Time) string {
	return CalendarDay(t.AddDate(0, 0, -1))
}

// ISOWeek formats t's ISO-8601 week as YYYY-Www. Weeks start on Monday and
// the year is the ISO week-numbering year, which can differ from t.Year()
// around January 1st.
func ISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
