// Package mapper translates between the local document's entry shape and
// the remote store's normalized row shapes. Translation is pure and
// deterministic; no I/O happens here.
package mapper

import (
	"math"
	"strconv"
	"strings"

	"earnroute-backend/internal/models"
	"earnroute-backend/internal/timeutil"
)

// MealToRow maps one local entry to its remote delivery row. The accepted
// prefix is stripped and both endpoints parsed to instants (nil when empty
// or unparseable). An unknown courier yields a nil platform reference — the
// row is still emitted, never dropped.
func MealToRow(m models.DeliveryEntry, userID string, shiftID *string, platforms models.PlatformLookup) models.Delivery {
	row := models.Delivery{
		DeliveryID:    m.ID,
		UserID:        userID,
		ShiftID:       shiftID,
		DeliveryLabel: strings.TrimSpace(m.Label),
		IsChecked:     m.Checked,
		PlatformID:    platforms.IDForCourier(m.Courier),
	}
	if t, ok := timeutil.ParseLocal(timeutil.StripAcceptedPrefix(m.Timestamp)); ok {
		row.AcceptedAt = &t
	}
	if t, ok := timeutil.ParseLocal(m.Delivered); ok {
		row.DeliveredAt = &t
	}
	if m.Duration != "" {
		d := m.Duration
		row.DurationText = &d
	}
	return row
}

// RowToMeal is the inverse: the "Accepted on: " prefix is reconstructed only
// when an accepted instant exists, and the platform reference is resolved
// back to the friendly display label.
func RowToMeal(row models.Delivery, platforms models.PlatformLookup) models.DeliveryEntry {
	m := models.DeliveryEntry{
		ID:      row.DeliveryID,
		Label:   row.DeliveryLabel,
		Checked: row.IsChecked,
		Courier: platforms.CodeForID(row.PlatformID).DisplayName(),
	}
	if row.AcceptedAt != nil {
		m.Timestamp = timeutil.WithAcceptedPrefix(timeutil.FormatLocale(*row.AcceptedAt))
	}
	if row.DeliveredAt != nil {
		m.Delivered = timeutil.FormatLocale(*row.DeliveredAt)
	}
	if row.DurationText != nil {
		m.Duration = *row.DurationText
	}
	return m
}

// EarningsRows builds one append-only row per platform for a push, dated
// with the given local calendar date ("2006-01-02"). Platforms missing from
// the lookup table are skipped.
func EarningsRows(es models.EarningsSummary, userID string, shiftID *string, platforms models.PlatformLookup, date string) []models.EarningsRow {
	var rows []models.EarningsRow
	add := func(platform models.Platform, pe models.PlatformEarnings) {
		id := platforms.IDForCourier(string(platform))
		if id == nil {
			return
		}
		rows = append(rows, models.EarningsRow{
			UserID:        userID,
			ShiftID:       shiftID,
			PlatformID:    *id,
			EarningsDate:  date,
			DeliveryPay:   Fix2(pe.DeliveryPay),
			Tips:          Fix2(pe.Tips),
			AdjustmentPay: Fix2(pe.AdjustmentPay),
			Total:         Fix2(pe.Total),
		})
	}
	add(models.PlatformGrubhub, es.Grubhub)
	add(models.PlatformUberEats, es.UberEats)
	return rows
}

// EarningsFromRows rebuilds a local summary from pulled per-platform rows.
// Rows must already be filtered to the latest push; the grand total is
// recomputed from the platform totals.
func EarningsFromRows(rows []models.EarningsRow, platforms models.PlatformLookup) models.EarningsSummary {
	es := models.EarningsSummary{
		Grubhub:    zeroEarnings(),
		UberEats:   zeroEarnings(),
		GrandTotal: "0.00",
	}
	grand := 0.0
	for _, r := range rows {
		pid := r.PlatformID
		pe := models.PlatformEarnings{
			DeliveryPay:   fmt2(r.DeliveryPay),
			Tips:          fmt2(r.Tips),
			AdjustmentPay: fmt2(r.AdjustmentPay),
			Total:         fmt2(r.Total),
		}
		switch platforms.CodeForID(&pid) {
		case models.PlatformGrubhub:
			es.Grubhub = pe
		case models.PlatformUberEats:
			es.UberEats = pe
		default:
			continue
		}
		grand += r.Total
	}
	es.GrandTotal = fmt2(grand)
	return es
}

// Fix2 coerces a decimal string to a 2-decimal-precision number; invalid or
// empty input yields 0.
func Fix2(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

func fmt2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func zeroEarnings() models.PlatformEarnings {
	return models.PlatformEarnings{DeliveryPay: "0.00", Tips: "0.00", AdjustmentPay: "0.00", Total: "0.00"}
}
