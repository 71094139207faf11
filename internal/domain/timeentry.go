package domain

import "time"

// TimeEntry is a recorded work period supplied by the time-tracking
// collaborator. It is read-only inside the compliance core.
type TimeEntry struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ActualClockIn  time.Time `json:"actual_clock_in"`
	ActualClockOut time.Time `json:"actual_clock_out"`
	BreakMinutes   int       `json:"break_minutes"`
}

// Duration returns the worked time between clock-in and clock-out.
func (e TimeEntry) Duration() time.Duration {
	return e.ActualClockOut.Sub(e.ActualClockIn)
}

// DurationMinutes returns the worked time in whole minutes.
func (e TimeEntry) DurationMinutes() int {
	return int(e.Duration() / time.Minute)
}
