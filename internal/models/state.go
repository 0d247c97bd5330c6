package models

import "fmt"

// MaxMeals caps the number of concurrent delivery entries. Adding past the
// cap is a silent no-op.
const MaxMeals = 25

// DeliveryEntry is one meal lifecycle record in the local state document.
// JSON field names match the persisted blob exactly: "timestamp" carries the
// accepted time prefixed with "Accepted on: ", "delivered" is a bare locale
// datetime string.
type DeliveryEntry struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Checked   bool   `json:"checked"`
	Timestamp string `json:"timestamp"`
	Delivered string `json:"delivered"`
	Duration  string `json:"duration"`
	Courier   string `json:"courierName"`
}

// Completed reports whether the entry has reached its terminal state.
// Once delivered, accepted/courier become immutable.
func (e *DeliveryEntry) Completed() bool {
	return e.Delivered != ""
}

// Untouched reports whether the entry may still be removed: neither an
// accepted nor a delivered timestamp is set.
func (e *DeliveryEntry) Untouched() bool {
	return e.Timestamp == "" && e.Delivered == ""
}

// StateDocument is the single source-of-truth record persisted as one blob
// under the deliveryAppState key. Shift scalars live directly on the
// document, not nested.
type StateDocument struct {
	Meals         []DeliveryEntry `json:"meals"`
	StartTime     string          `json:"startTime"`
	EndTime       string          `json:"endTime"`
	OdometerStart string          `json:"odometerStart"`
	OdometerEnd   string          `json:"odometerEnd"`
}

// Meal returns a pointer to the entry with the given id, or nil.
func (d *StateDocument) Meal(id string) *DeliveryEntry {
	for i := range d.Meals {
		if d.Meals[i].ID == id {
			return &d.Meals[i]
		}
	}
	return nil
}

// OrdinalLabel builds the default display name for the n-th meal
// (1 → "1st Meal", 2 → "2nd Meal", ...).
func OrdinalLabel(n int) string {
	return fmt.Sprintf("%d%s Meal", n, ordinalSuffix(n))
}

func ordinalSuffix(i int) string {
	j, k := i%10, i%100
	if j == 1 && k != 11 {
		return "st"
	}
	if j == 2 && k != 12 {
		return "nd"
	}
	if j == 3 && k != 13 {
		return "rd"
	}
	return "th"
}

// PlatformEarnings holds one platform's figures from the earnings sheet.
// All fields are decimal strings fixed to 2 places; total always equals
// deliveryPay + tips + adjustmentPay at the moment of calculation.
type PlatformEarnings struct {
	DeliveryPay   string `json:"deliveryPay"`
	Tips          string `json:"tips"`
	AdjustmentPay string `json:"adjustmentPay"`
	Total         string `json:"total"`
}

// EarningsSummary is the sibling document cached under the earningsSummary
// key. It is the result of a user-triggered calculation, not continuously
// recomputed.
type EarningsSummary struct {
	Grubhub    PlatformEarnings `json:"grubhub"`
	UberEats   PlatformEarnings `json:"uberEats"`
	GrandTotal string           `json:"grandTotal"`
}
