package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"earnroute-backend/internal/models"
)

func testLookup() models.PlatformLookup {
	return models.NewPlatformLookup([]models.PlatformRow{
		{PlatformID: 1, PlatformCode: "grubHub"},
		{PlatformID: 2, PlatformCode: "uberEats"},
	})
}

func TestMealToRow(t *testing.T) {
	platforms := testLookup()
	shiftID := "shift-1"
	m := models.DeliveryEntry{
		ID:        "meal-1",
		Label:     "  3rd Meal ",
		Checked:   true,
		Timestamp: "Accepted on: 8/12/2025, 1:00:00 PM",
		Delivered: "8/12/2025, 1:25:00 PM",
		Duration:  "0 hours 25 minutes",
		Courier:   "Uber Eats",
	}

	row := MealToRow(m, "user-1", &shiftID, platforms)
	assert.Equal(t, "meal-1", row.DeliveryID)
	assert.Equal(t, "user-1", row.UserID)
	assert.Equal(t, "3rd Meal", row.DeliveryLabel)
	assert.True(t, row.IsChecked)
	require.NotNil(t, row.PlatformID)
	assert.Equal(t, 2, *row.PlatformID)
	require.NotNil(t, row.AcceptedAt)
	assert.True(t, row.AcceptedAt.Equal(time.Date(2025, 8, 12, 13, 0, 0, 0, time.Local)))
	require.NotNil(t, row.DeliveredAt)
	assert.True(t, row.DeliveredAt.Equal(time.Date(2025, 8, 12, 13, 25, 0, 0, time.Local)))
	require.NotNil(t, row.DurationText)
	assert.Equal(t, "0 hours 25 minutes", *row.DurationText)
}

func TestMealToRowUnknownCourierStillEmitsRow(t *testing.T) {
	row := MealToRow(models.DeliveryEntry{ID: "meal-2", Courier: "DoorDash"}, "user-1", nil, testLookup())
	assert.Equal(t, "meal-2", row.DeliveryID)
	assert.Nil(t, row.PlatformID)
	assert.Nil(t, row.AcceptedAt)
	assert.Nil(t, row.DeliveredAt)
	assert.Nil(t, row.DurationText)
}

func TestRowToMealRoundTrip(t *testing.T) {
	platforms := testLookup()
	m := models.DeliveryEntry{
		ID:        "meal-1",
		Label:     "1st Meal",
		Checked:   true,
		Timestamp: "Accepted on: 8/12/2025, 1:00:00 PM",
		Delivered: "8/12/2025, 1:25:00 PM",
		Duration:  "0 hours 25 minutes",
		Courier:   "grubHub",
	}

	back := RowToMeal(MealToRow(m, "user-1", nil, platforms), platforms)
	assert.Equal(t, m.ID, back.ID)
	assert.Equal(t, m.Label, back.Label)
	assert.Equal(t, m.Checked, back.Checked)
	assert.Equal(t, m.Timestamp, back.Timestamp)
	assert.Equal(t, m.Delivered, back.Delivered)
	assert.Equal(t, m.Duration, back.Duration)
	assert.Equal(t, "Grubhub", back.Courier) // code resolves to the display label
}

func TestRowToMealPendingDelivery(t *testing.T) {
	back := RowToMeal(models.Delivery{DeliveryID: "meal-3", DeliveryLabel: "3rd Meal"}, testLookup())
	assert.Empty(t, back.Timestamp) // no prefix fabricated for a missing accept
	assert.Empty(t, back.Delivered)
	assert.Empty(t, back.Courier)
}

func TestEarningsRows(t *testing.T) {
	platforms := testLookup()
	es := models.EarningsSummary{
		Grubhub:  models.PlatformEarnings{DeliveryPay: "10.006", Tips: "2.00", AdjustmentPay: "1.50", Total: "13.51"},
		UberEats: models.PlatformEarnings{DeliveryPay: "8.00", Tips: "junk", AdjustmentPay: "", Total: "8.00"},
	}

	rows := EarningsRows(es, "user-1", nil, platforms, "2025-08-12")
	require.Len(t, rows, 2)

	gh := rows[0]
	assert.Equal(t, 1, gh.PlatformID)
	assert.Equal(t, "2025-08-12", gh.EarningsDate)
	assert.InDelta(t, 10.01, gh.DeliveryPay, 1e-9) // rounded to 2dp
	assert.InDelta(t, 1.50, gh.AdjustmentPay, 1e-9)

	ue := rows[1]
	assert.Equal(t, 2, ue.PlatformID)
	assert.Zero(t, ue.Tips) // invalid decimal coerces to 0
}

func TestEarningsRowsSkipsUnseededPlatform(t *testing.T) {
	partial := models.NewPlatformLookup([]models.PlatformRow{{PlatformID: 1, PlatformCode: "grubHub"}})
	rows := EarningsRows(models.EarningsSummary{}, "user-1", nil, partial, "2025-08-12")
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].PlatformID)
}

func TestEarningsFromRows(t *testing.T) {
	platforms := testLookup()
	rows := []models.EarningsRow{
		{PlatformID: 1, DeliveryPay: 10, Tips: 2.5, AdjustmentPay: 0, Total: 12.5},
		{PlatformID: 2, DeliveryPay: 8, Tips: 0, AdjustmentPay: 1, Total: 9},
	}

	es := EarningsFromRows(rows, platforms)
	assert.Equal(t, "10.00", es.Grubhub.DeliveryPay)
	assert.Equal(t, "2.50", es.Grubhub.Tips)
	assert.Equal(t, "9.00", es.UberEats.Total)
	assert.Equal(t, "21.50", es.GrandTotal)
}

func TestEarningsFromRowsDefaults(t *testing.T) {
	es := EarningsFromRows(nil, testLookup())
	assert.Equal(t, "0.00", es.Grubhub.DeliveryPay)
	assert.Equal(t, "0.00", es.UberEats.Total)
	assert.Equal(t, "0.00", es.GrandTotal)

	// rows for an unknown platform id are ignored entirely
	es = EarningsFromRows([]models.EarningsRow{{PlatformID: 99, Total: 50}}, testLookup())
	assert.Equal(t, "0.00", es.GrandTotal)
}

func TestFix2(t *testing.T) {
	assert.InDelta(t, 10.01, Fix2("10.006"), 1e-9)
	assert.InDelta(t, 10.00, Fix2(" 10 "), 1e-9)
	assert.Zero(t, Fix2(""))
	assert.Zero(t, Fix2("NaN"))
	assert.Zero(t, Fix2("abc"))
}
