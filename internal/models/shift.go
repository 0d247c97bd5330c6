package models

import "time"

// Shift represents one continuous online period with odometer readings.
// An "open" shift is one with a NULL end_at; the sync push ensures at most
// one open shift per user exists.
type Shift struct {
	ShiftID       string     `json:"shift_id" db:"shift_id"`
	UserID        string     `json:"user_id" db:"user_id"`
	StartAt       *time.Time `json:"start_at" db:"start_at"`
	EndAt         *time.Time `json:"end_at" db:"end_at"`
	ShiftDate     *string    `json:"shift_date" db:"shift_date"`
	OdometerStart *float64   `json:"odometer_start" db:"odometer_start"`
	OdometerEnd   *float64   `json:"odometer_end" db:"odometer_end"`
	CreatedAt     int64      `json:"created_at" db:"created_at"`
	UpdatedAt     int64      `json:"updated_at" db:"updated_at"`
}

// Open reports whether the shift has not been closed yet.
func (s *Shift) Open() bool {
	return s.EndAt == nil
}

// Duration returns end - start, or elapsed time against now for an open
// shift. Zero when start is missing or the difference is negative.
func (s *Shift) Duration(now time.Time) time.Duration {
	if s.StartAt == nil {
		return 0
	}
	end := now
	if s.EndAt != nil {
		end = *s.EndAt
	}
	d := end.Sub(*s.StartAt)
	if d < 0 {
		return 0
	}
	return d
}

// Miles returns odometer_end - odometer_start when both are present and the
// end reading is strictly greater; zero otherwise.
func (s *Shift) Miles() float64 {
	if s.OdometerStart == nil || s.OdometerEnd == nil {
		return 0
	}
	if *s.OdometerEnd <= *s.OdometerStart {
		return 0
	}
	return *s.OdometerEnd - *s.OdometerStart
}
