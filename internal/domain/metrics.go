package domain

import "time"

// MetricsSnapshot holds one day's aggregate health metrics.
// An all-zero snapshot is the "no data available" sentinel: callers must
// treat it as unknown, not as zero activity, when applying cached fallbacks.
type MetricsSnapshot struct {
	Date         time.Time `json:"date"`
	Steps        float64   `json:"steps"`
	HeartRate    float64   `json:"heartRate"`    // average beats/min
	ActiveEnergy float64   `json:"activeEnergy"` // kcal
}

// IsZero reports whether the snapshot carries no data at all.
func (m MetricsSnapshot) IsZero() bool {
	return m.Steps == 0 && m.HeartRate == 0 && m.ActiveEnergy == 0
}

// SummaryStatus classifies a day's net calorie balance.
type SummaryStatus string

const (
	StatusDeficit SummaryStatus = "deficit"
	StatusSurplus SummaryStatus = "surplus"
)

// DailySummary is the derived intake/spent/net/status tuple for one
// calendar day.
type DailySummary struct {
	Date    time.Time       `json:"date"`
	Intake  int             `json:"intake"`
	Spent   int             `json:"spent"`
	Net     int             `json:"net"`
	Status  SummaryStatus   `json:"status"`
	Metrics MetricsSnapshot `json:"metrics"`
}
