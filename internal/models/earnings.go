package models

// EarningsRow is one per-platform earnings record. Rows are a historical
// log: the push inserts them append-only, never upserts. Retrying a failed
// push therefore can duplicate rows — a documented limitation of the log.
type EarningsRow struct {
	ID            int     `json:"id" db:"id"`
	UserID        string  `json:"user_id" db:"user_id"`
	ShiftID       *string `json:"shift_id" db:"shift_id"`
	PlatformID    int     `json:"platform_id" db:"platform_id"`
	EarningsDate  string  `json:"earnings_date" db:"earnings_date"`
	DeliveryPay   float64 `json:"delivery_pay" db:"delivery_pay"`
	Tips          float64 `json:"tips" db:"tips"`
	AdjustmentPay float64 `json:"adjustment_pay" db:"adjustment_pay"`
	Total         float64 `json:"total" db:"total"`
}
