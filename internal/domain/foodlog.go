package domain

import "time"

// FoodLog represents one logged food item with its estimated calories.
// Entries are value objects: updates replace the whole entry, the store
// never mutates one in place.
type FoodLog struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	Title    string    `json:"title"`
	Calories int       `json:"calories"` // always >= 0
	Notes    string    `json:"notes,omitempty"`
}

// SameDay reports whether the entry falls on the same local calendar day as t.
// Grouping ignores the time-of-day component entirely.
func (f FoodLog) SameDay(t time.Time) bool {
	ey, em, ed := f.Date.Local().Date()
	ty, tm, td := t.Local().Date()
	return ey == ty && em == tm && ed == td
}

// DayStart returns local midnight for t. Entries created by the scan path
// are normalized to this boundary before persisting.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
