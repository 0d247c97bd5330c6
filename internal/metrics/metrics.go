// Package metrics computes derived KPIs from state document and earnings
// snapshots. Everything here is pure: callers pass the snapshot and, where
// open intervals matter, the current time.
package metrics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"earnroute-backend/internal/models"
	"earnroute-backend/internal/timeutil"
)

// KPISet holds the per-order economics for one snapshot.
type KPISet struct {
	CompletedCount int     `json:"completed_count"`
	Earnings       float64 `json:"earnings"`
	Miles          float64 `json:"miles"`
	AvgOrder       float64 `json:"avg_order"`
	MilesPerOrder  float64 `json:"miles_per_order"`
	PayPerMile     float64 `json:"pay_per_mile"`
}

// CompletedCount counts entries that are both checked AND delivered. The
// dual condition guards against entries carrying a delivered string that
// were never marked accepted through the normal flow.
func CompletedCount(doc *models.StateDocument) int {
	n := 0
	for _, m := range doc.Meals {
		if m.Checked && strings.TrimSpace(m.Delivered) != "" {
			n++
		}
	}
	return n
}

// Earnings sums deliveryPay + tips across platforms. Adjustment pay is
// excluded on purpose: disputes and bonuses are noise for per-order
// economics.
func Earnings(es *models.EarningsSummary) float64 {
	if es == nil {
		return 0
	}
	return num(es.Grubhub.DeliveryPay) + num(es.Grubhub.Tips) +
		num(es.UberEats.DeliveryPay) + num(es.UberEats.Tips)
}

// Miles returns odometerEnd - odometerStart when both parse and the end
// reading is strictly greater; zero otherwise.
func Miles(doc *models.StateDocument) float64 {
	start, err1 := strconv.ParseFloat(strings.TrimSpace(doc.OdometerStart), 64)
	end, err2 := strconv.ParseFloat(strings.TrimSpace(doc.OdometerEnd), 64)
	if err1 != nil || err2 != nil || end <= start {
		return 0
	}
	return end - start
}

// Compute derives the full KPI set from one snapshot.
func Compute(doc *models.StateDocument, es *models.EarningsSummary) KPISet {
	k := KPISet{
		CompletedCount: CompletedCount(doc),
		Earnings:       Earnings(es),
		Miles:          Miles(doc),
	}
	if k.CompletedCount > 0 {
		k.AvgOrder = k.Earnings / float64(k.CompletedCount)
		if k.Miles > 0 {
			k.MilesPerOrder = k.Miles / float64(k.CompletedCount)
		}
	}
	if k.Miles > 0 {
		k.PayPerMile = k.Earnings / k.Miles
	}
	return k
}

// AverageDuration returns the mean delivered-accepted span over completed
// entries of one platform, as "Xh Ym" with zero components omitted. "<1m"
// when the mean rounds to zero, "None" when nothing qualifies.
func AverageDuration(doc *models.StateDocument, platform models.Platform) string {
	var total time.Duration
	count := 0
	for _, m := range doc.Meals {
		if !m.Checked || !m.Completed() {
			continue
		}
		if models.ParsePlatform(m.Courier) != platform {
			continue
		}
		if d, ok := span(m); ok {
			total += d
			count++
		}
	}
	if count == 0 || total <= 0 {
		return "None"
	}
	avgMinutes := int((total/time.Duration(count) + 30*time.Second) / time.Minute)
	if avgMinutes <= 0 {
		return "<1m"
	}
	var parts []string
	if h := avgMinutes / 60; h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if mm := avgMinutes % 60; mm > 0 {
		parts = append(parts, fmt.Sprintf("%dm", mm))
	}
	return strings.Join(parts, " ")
}

// ActiveTimeForDay sums delivered-accepted spans for one platform's entries
// whose delivered instant falls on the given local calendar date
// ("2006-01-02"). Negative and malformed spans are excluded.
func ActiveTimeForDay(doc *models.StateDocument, platform models.Platform, ymd string) time.Duration {
	return ActiveTimeForRange(doc, platform, ymd, ymd)
}

// ActiveTimeForRange is the inclusive date-range variant, bucketing by the
// delivered LOCAL date. A delivery spanning a range boundary contributes its
// full span to the delivered date's bucket; see OverlapActiveTime for the
// boundary-correct algorithm used against the remote store.
func ActiveTimeForRange(doc *models.StateDocument, platform models.Platform, startYMD, endYMD string) time.Duration {
	if startYMD > endYMD {
		startYMD, endYMD = endYMD, startYMD
	}
	var total time.Duration
	for _, m := range doc.Meals {
		if models.ParsePlatform(m.Courier) != platform {
			continue
		}
		delivered, ok := timeutil.ParseLocal(m.Delivered)
		if !ok {
			continue
		}
		ymd := delivered.Format("2006-01-02")
		if ymd < startYMD || ymd > endYMD {
			continue
		}
		if d, ok := span(m); ok {
			total += d
		}
	}
	return total
}

// OverlapActiveTime computes total active time from remote delivery rows as
// interval overlap: each row's [accepted, delivered-or-now) clipped to
// [windowStart, windowEnd). Unlike the delivered-date bucketing above, this
// correctly apportions a delivery that spans a window boundary.
func OverlapActiveTime(rows []models.Delivery, platformID int, windowStart, windowEnd, now time.Time) time.Duration {
	var total time.Duration
	for _, r := range rows {
		if r.PlatformID == nil || *r.PlatformID != platformID {
			continue
		}
		if r.AcceptedAt == nil {
			continue
		}
		start := *r.AcceptedAt
		end := now
		if r.DeliveredAt != nil {
			end = *r.DeliveredAt
		}
		if start.Before(windowStart) {
			start = windowStart
		}
		if end.After(windowEnd) {
			end = windowEnd
		}
		if overlap := end.Sub(start); overlap > 0 {
			total += overlap
		}
	}
	return total
}

// FormatHMS renders a duration as zero-padded "HH:MM:SS"; non-positive
// values render as "00:00:00".
func FormatHMS(d time.Duration) string {
	if d <= 0 {
		return "00:00:00"
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

// ShiftSummary mirrors the home-page pills: total online duration, delivery
// count, and mileage, with "Pending" sentinels where inputs are missing.
type ShiftSummary struct {
	Online     string `json:"online"`
	Deliveries int    `json:"deliveries"`
	Mileage    string `json:"mileage"`
}

// Summarize builds the shift summary. An open shift (no end time) runs
// against now; the delivery count here is checked entries, matching the
// legacy summary rather than the stricter completed count.
func Summarize(doc *models.StateDocument, now time.Time) ShiftSummary {
	sum := ShiftSummary{Online: "Pending", Mileage: "Pending"}
	if start, ok := timeutil.ParseLocal(doc.StartTime); ok {
		end := now
		if t, ok := timeutil.ParseLocal(doc.EndTime); ok {
			end = t
		}
		sum.Online = timeutil.FormatDurationHM(start, end)
	}
	for _, m := range doc.Meals {
		if m.Checked {
			sum.Deliveries++
		}
	}
	if miles := Miles(doc); miles > 0 {
		sum.Mileage = fmt.Sprintf("%.1f Miles", miles)
	}
	return sum
}

// span returns delivered - accepted for one entry, false when either side is
// missing or unparseable or the difference is not positive.
func span(m models.DeliveryEntry) (time.Duration, bool) {
	accepted, aok := timeutil.ParseLocal(timeutil.StripAcceptedPrefix(m.Timestamp))
	delivered, dok := timeutil.ParseLocal(m.Delivered)
	if !aok || !dok {
		return 0, false
	}
	d := delivered.Sub(accepted)
	if d <= 0 {
		return 0, false
	}
	return d, true
}

func num(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
