package models

import "time"

// Delivery is the normalized remote row for one meal. The primary key is the
// entry's stable local id, which makes repeated pushes upsert rather than
// duplicate.
type Delivery struct {
	DeliveryID    string     `json:"delivery_id" db:"delivery_id"`
	UserID        string     `json:"user_id" db:"user_id"`
	ShiftID       *string    `json:"shift_id" db:"shift_id"`
	DeliveryLabel string     `json:"delivery_label" db:"delivery_label"`
	AcceptedAt    *time.Time `json:"accepted_at" db:"accepted_at"`
	DeliveredAt   *time.Time `json:"delivered_at" db:"delivered_at"`
	DurationText  *string    `json:"duration_text" db:"duration_text"`
	PlatformID    *int       `json:"platform_id" db:"platform_id"`
	IsChecked     bool       `json:"is_checked" db:"is_checked"`
	CreatedAt     int64      `json:"created_at" db:"created_at"`
	UpdatedAt     int64      `json:"updated_at" db:"updated_at"`
}
