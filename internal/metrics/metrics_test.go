package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"earnroute-backend/internal/models"
)

func pe(deliveryPay, tips, adjustment, total string) models.PlatformEarnings {
	return models.PlatformEarnings{
		DeliveryPay:   deliveryPay,
		Tips:          tips,
		AdjustmentPay: adjustment,
		Total:         total,
	}
}

func TestCompletedCountRequiresCheckedAndDelivered(t *testing.T) {
	doc := &models.StateDocument{Meals: []models.DeliveryEntry{
		{Checked: true, Delivered: "8/12/2025, 2:00:00 PM"},
		{Checked: true, Delivered: ""},                       // accepted but pending
		{Checked: false, Delivered: "8/12/2025, 2:00:00 PM"}, // delivered string without accept
		{Checked: true, Delivered: "   "},
	}}
	assert.Equal(t, 1, CompletedCount(doc))
}

func TestEarningsExcludesAdjustmentPay(t *testing.T) {
	es := &models.EarningsSummary{
		Grubhub:  pe("10.00", "2.00", "100.00", "112.00"),
		UberEats: pe("0.00", "0.00", "0.00", "0.00"),
	}
	assert.InDelta(t, 12.00, Earnings(es), 1e-9)
	assert.Zero(t, Earnings(nil))
}

func TestMiles(t *testing.T) {
	doc := &models.StateDocument{OdometerStart: "100", OdometerEnd: "150.5"}
	assert.InDelta(t, 50.5, Miles(doc), 1e-9)

	// end <= start and unparseable readings yield zero
	assert.Zero(t, Miles(&models.StateDocument{OdometerStart: "150", OdometerEnd: "150"}))
	assert.Zero(t, Miles(&models.StateDocument{OdometerStart: "abc", OdometerEnd: "150"}))
	assert.Zero(t, Miles(&models.StateDocument{}))
}

func TestComputeKPIs(t *testing.T) {
	doc := &models.StateDocument{
		OdometerStart: "100",
		OdometerEnd:   "150.5",
		Meals: []models.DeliveryEntry{
			{Checked: true, Delivered: "8/12/2025, 2:00:00 PM"},
			{Checked: true, Delivered: "8/12/2025, 3:00:00 PM"},
		},
	}
	es := &models.EarningsSummary{
		Grubhub:  pe("10.00", "2.00", "100.00", "112.00"),
		UberEats: pe("8.00", "4.00", "0.00", "12.00"),
	}

	k := Compute(doc, es)
	assert.Equal(t, 2, k.CompletedCount)
	assert.InDelta(t, 24.00, k.Earnings, 1e-9)
	assert.InDelta(t, 50.5, k.Miles, 1e-9)
	assert.InDelta(t, 12.00, k.AvgOrder, 1e-9) // adjustment pay stays out
	assert.InDelta(t, 25.25, k.MilesPerOrder, 1e-9)
	assert.InDelta(t, 24.00/50.5, k.PayPerMile, 1e-9)
}

func TestComputeKPIsZeroGuards(t *testing.T) {
	k := Compute(&models.StateDocument{}, &models.EarningsSummary{})
	assert.Zero(t, k.AvgOrder)
	assert.Zero(t, k.MilesPerOrder)
	assert.Zero(t, k.PayPerMile)
}

func TestAverageDuration(t *testing.T) {
	doc := &models.StateDocument{Meals: []models.DeliveryEntry{
		{
			Checked:   true,
			Courier:   "grubHub",
			Timestamp: "Accepted on: 8/12/2025, 1:00:00 PM",
			Delivered: "8/12/2025, 1:20:00 PM", // 20m
		},
		{
			Checked:   true,
			Courier:   "grubHub",
			Timestamp: "Accepted on: 8/12/2025, 2:00:00 PM",
			Delivered: "8/12/2025, 3:10:30 PM", // 70m30s, rounds to 71m
		},
		{
			Checked:   true,
			Courier:   "uberEats",
			Timestamp: "Accepted on: 8/12/2025, 2:00:00 PM",
			Delivered: "8/12/2025, 2:00:20 PM", // 20s
		},
	}}

	// (20m + 70m30s) / 2 = 45m15s, rounds half-up to 45m
	assert.Equal(t, "45m", AverageDuration(doc, models.PlatformGrubhub))
	assert.Equal(t, "<1m", AverageDuration(doc, models.PlatformUberEats))
	assert.Equal(t, "None", AverageDuration(&models.StateDocument{}, models.PlatformGrubhub))
}

func TestAverageDurationHourComponent(t *testing.T) {
	doc := &models.StateDocument{Meals: []models.DeliveryEntry{{
		Checked:   true,
		Courier:   "grubHub",
		Timestamp: "Accepted on: 8/12/2025, 1:00:00 PM",
		Delivered: "8/12/2025, 2:30:00 PM",
	}}}
	assert.Equal(t, "1h 30m", AverageDuration(doc, models.PlatformGrubhub))

	doc.Meals[0].Delivered = "8/12/2025, 3:00:00 PM"
	assert.Equal(t, "2h", AverageDuration(doc, models.PlatformGrubhub))
}

func TestActiveTimeForRangeBucketsByDeliveredDate(t *testing.T) {
	doc := &models.StateDocument{Meals: []models.DeliveryEntry{
		{
			Courier:   "grubHub",
			Timestamp: "Accepted on: 1/1/2025, 11:00:00 PM",
			Delivered: "1/2/2025, 12:00:00 AM", // delivered Jan 2, counts fully there
		},
		{
			Courier:   "grubHub",
			Timestamp: "Accepted on: 1/1/2025, 10:00:00 AM",
			Delivered: "1/1/2025, 10:30:00 AM",
		},
		{
			Courier:   "uberEats",
			Timestamp: "Accepted on: 1/1/2025, 10:00:00 AM",
			Delivered: "1/1/2025, 11:00:00 AM",
		},
	}}

	// only the 30m same-day meal lands on Jan 1 for grubHub
	assert.Equal(t, 30*time.Minute, ActiveTimeForDay(doc, models.PlatformGrubhub, "2025-01-01"))
	// the midnight-spanning hour lands entirely in Jan 2's bucket
	assert.Equal(t, time.Hour, ActiveTimeForDay(doc, models.PlatformGrubhub, "2025-01-02"))
	// reversed bounds are swapped
	assert.Equal(t, 90*time.Minute, ActiveTimeForRange(doc, models.PlatformGrubhub, "2025-01-02", "2025-01-01"))
}

func TestOverlapActiveTimeClipsAtBoundaries(t *testing.T) {
	gh := 1
	accepted := time.Date(2025, 1, 1, 23, 0, 0, 0, time.Local)
	delivered := time.Date(2025, 1, 2, 1, 0, 0, 0, time.Local)
	rows := []models.Delivery{{
		PlatformID:  &gh,
		AcceptedAt:  &accepted,
		DeliveredAt: &delivered,
	}}

	windowStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	windowEnd := time.Date(2025, 1, 2, 0, 0, 0, 0, time.Local)
	now := time.Date(2025, 1, 3, 0, 0, 0, 0, time.Local)

	// only 23:00 -> midnight falls inside the Jan 1 window
	assert.Equal(t, time.Hour, OverlapActiveTime(rows, gh, windowStart, windowEnd, now))
	// Jan 2 window picks up the remaining hour
	assert.Equal(t, time.Hour, OverlapActiveTime(rows, gh, windowEnd, windowEnd.AddDate(0, 0, 1), now))
	// other platform sees nothing
	assert.Zero(t, OverlapActiveTime(rows, 2, windowStart, windowEnd, now))
}

func TestOverlapActiveTimeOpenDeliveryRunsToNow(t *testing.T) {
	gh := 1
	accepted := time.Date(2025, 1, 1, 10, 0, 0, 0, time.Local)
	rows := []models.Delivery{{PlatformID: &gh, AcceptedAt: &accepted}}

	windowStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	windowEnd := time.Date(2025, 1, 2, 0, 0, 0, 0, time.Local)
	now := time.Date(2025, 1, 1, 10, 45, 0, 0, time.Local)

	assert.Equal(t, 45*time.Minute, OverlapActiveTime(rows, gh, windowStart, windowEnd, now))
}

func TestFormatHMS(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatHMS(0))
	assert.Equal(t, "00:00:00", FormatHMS(-time.Minute))
	assert.Equal(t, "00:59:00", FormatHMS(59*time.Minute))
	assert.Equal(t, "25:00:07", FormatHMS(25*time.Hour+7*time.Second))
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 8, 12, 18, 0, 0, 0, time.Local)

	doc := &models.StateDocument{
		StartTime:     "8/12/2025, 10:00:00 AM",
		OdometerStart: "100",
		OdometerEnd:   "150.5",
		Meals: []models.DeliveryEntry{
			{Checked: true},
			{Checked: true, Delivered: "8/12/2025, 2:00:00 PM"},
			{Checked: false},
		},
	}

	sum := Summarize(doc, now)
	assert.Equal(t, "8 hours 0 minutes", sum.Online)
	assert.Equal(t, 2, sum.Deliveries) // checked, not completed
	assert.Equal(t, "50.5 Miles", sum.Mileage)

	// explicit end time wins over now
	doc.EndTime = "8/12/2025, 12:30:00 PM"
	assert.Equal(t, "2 hours 30 minutes", Summarize(doc, now).Online)

	empty := Summarize(&models.StateDocument{}, now)
	assert.Equal(t, "Pending", empty.Online)
	assert.Equal(t, "Pending", empty.Mileage)
	assert.Zero(t, empty.Deliveries)
}
