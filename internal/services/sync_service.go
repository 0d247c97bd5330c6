package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"earnroute-backend/internal/mapper"
	"earnroute-backend/internal/metrics"
	"earnroute-backend/internal/models"
	"earnroute-backend/internal/statestore"
	"earnroute-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotAuthenticated is returned when a push or pull is attempted without a
// resolved principal. Callers surface it and abort; they must not retry.
var ErrNotAuthenticated = errors.New("no authenticated principal")

// SyncService drains the local state document to the remote store and back.
// Push steps 2-5 are idempotent; earnings inserts (step 6) are append-only,
// so a retried push duplicates earnings rows. Known limitation.
type SyncService struct {
	db    *sqlx.DB
	store *statestore.Store
	now   func() time.Time
}

func NewSyncService(db *sqlx.DB, store *statestore.Store) *SyncService {
	return &SyncService{db: db, store: store, now: time.Now}
}

// WithClock overrides the time source. Used by tests.
func (s *SyncService) WithClock(now func() time.Time) *SyncService {
	s.now = now
	return s
}

// PushResult summarizes one completed push.
type PushResult struct {
	ShiftID          string `json:"shift_id"`
	Deliveries       int    `json:"deliveries"`
	UnknownPlatforms int    `json:"unknown_platforms"`
	EarningsRows     int    `json:"earnings_rows"`
}

// Push uploads the local document: ensure an open shift exists, patch it
// from the shift scalars, upsert every delivery row, then append earnings
// rows when a summary exists. Any step's failure aborts the rest.
func (s *SyncService) Push(ctx context.Context, userID string) (*PushResult, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	shiftID, err := s.ensureOpenShift(ctx, userID, doc)
	if err != nil {
		return nil, err
	}
	if err := s.patchShift(ctx, shiftID, doc); err != nil {
		return nil, err
	}

	platforms, err := s.LoadPlatforms(ctx)
	if err != nil {
		return nil, err
	}

	result := &PushResult{ShiftID: shiftID}
	for _, meal := range doc.Meals {
		row := mapper.MealToRow(meal, userID, &shiftID, platforms)
		if row.PlatformID == nil && strings.TrimSpace(meal.Courier) != "" {
			log.Printf("⚠️  Unknown courier %q on %s — pushing with platform unset", meal.Courier, meal.Label)
			result.UnknownPlatforms++
		}
		if err := s.upsertDelivery(ctx, row); err != nil {
			return nil, fmt.Errorf("failed to upsert delivery %s: %w", row.DeliveryID, err)
		}
		result.Deliveries++
	}

	hasEarnings, err := s.store.HasEarnings(ctx)
	if err != nil {
		return nil, err
	}
	if hasEarnings {
		es, err := s.store.LoadEarnings(ctx)
		if err != nil {
			return nil, err
		}
		date := s.now().Format("2006-01-02")
		rows := mapper.EarningsRows(*es, userID, &shiftID, platforms, date)
		for _, row := range rows {
			if err := s.insertEarnings(ctx, row); err != nil {
				return nil, fmt.Errorf("failed to insert earnings row: %w", err)
			}
		}
		result.EarningsRows = len(rows)
	}

	log.Printf("✅ Push complete: %d deliveries, %d earnings rows (shift %s)",
		result.Deliveries, result.EarningsRows, shiftID)
	return result, nil
}

// Pull downloads the principal's delivery rows and replaces the local meals
// array wholesale; every other document field is preserved. The latest
// per-platform earnings rows rebuild the cached summary when present.
func (s *SyncService) Pull(ctx context.Context, userID string) (*models.StateDocument, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	platforms, err := s.LoadPlatforms(ctx)
	if err != nil {
		return nil, err
	}

	var rows []models.Delivery
	query := `SELECT * FROM deliveries
			  WHERE user_id = $1
			  ORDER BY accepted_at ASC NULLS LAST`
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}

	meals := make([]models.DeliveryEntry, 0, len(rows))
	for _, row := range rows {
		meals = append(meals, mapper.RowToMeal(row, platforms))
	}
	if err := s.store.ReplaceMeals(ctx, meals); err != nil {
		return nil, err
	}

	var earnRows []models.EarningsRow
	earnQuery := `SELECT DISTINCT ON (platform_id) * FROM earnings
				  WHERE user_id = $1
				  ORDER BY platform_id, id DESC`
	if err := s.db.SelectContext(ctx, &earnRows, earnQuery, userID); err != nil {
		return nil, fmt.Errorf("failed to list earnings: %w", err)
	}
	if len(earnRows) > 0 {
		es := mapper.EarningsFromRows(earnRows, platforms)
		if err := s.store.SaveEarnings(ctx, &es); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ Pull complete: %d deliveries for user %s", len(meals), userID)
	return s.store.Load(ctx)
}

// RemoteActiveTime computes total active time for one platform over a query
// window from the remote rows, as interval overlap of each row's
// [accepted, delivered-or-now) against [windowStart, windowEnd).
func (s *SyncService) RemoteActiveTime(ctx context.Context, userID string, platform models.Platform, windowStart, windowEnd time.Time) (time.Duration, error) {
	if userID == "" {
		return 0, ErrNotAuthenticated
	}
	platforms, err := s.LoadPlatforms(ctx)
	if err != nil {
		return 0, err
	}
	platformID := platforms.IDForCourier(string(platform))
	if platformID == nil {
		return 0, fmt.Errorf("unknown platform %q", platform)
	}

	var rows []models.Delivery
	query := `SELECT * FROM deliveries
			  WHERE user_id = $1
			  AND accepted_at IS NOT NULL
			  AND accepted_at < $2
			  AND (delivered_at IS NULL OR delivered_at > $3)`
	if err := s.db.SelectContext(ctx, &rows, query, userID, windowEnd, windowStart); err != nil {
		return 0, fmt.Errorf("failed to list deliveries: %w", err)
	}
	return metrics.OverlapActiveTime(rows, *platformID, windowStart, windowEnd, s.now()), nil
}

// LoadPlatforms resolves the platform lookup table. Called once per push.
func (s *SyncService) LoadPlatforms(ctx context.Context) (models.PlatformLookup, error) {
	var rows []models.PlatformRow
	query := `SELECT platform_id, platform_code FROM platforms`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return models.PlatformLookup{}, fmt.Errorf("failed to list platforms: %w", err)
	}
	return models.NewPlatformLookup(rows), nil
}

// ensureOpenShift finds the principal's open shift (end_at IS NULL) or
// creates one seeded from the document's start time and odometer start.
func (s *SyncService) ensureOpenShift(ctx context.Context, userID string, doc *models.StateDocument) (string, error) {
	var shift models.Shift
	query := `SELECT * FROM shifts
			  WHERE user_id = $1 AND end_at IS NULL
			  ORDER BY created_at DESC
			  LIMIT 1`
	err := s.db.GetContext(ctx, &shift, query, userID)
	if err == nil {
		return shift.ShiftID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to find open shift: %w", err)
	}

	shiftID := uuid.New().String()
	startAt := parseLocalPtr(doc.StartTime)
	shiftDate := s.now().Format("2006-01-02")
	insert := `INSERT INTO shifts (shift_id, user_id, start_at, shift_date, odometer_start)
			   VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.db.ExecContext(ctx, insert, shiftID, userID, startAt, shiftDate, parseFloatPtr(doc.OdometerStart)); err != nil {
		return "", fmt.Errorf("failed to create shift: %w", err)
	}
	log.Printf("🆕 Opened shift %s for user %s", shiftID, userID)
	return shiftID, nil
}

// patchShift updates only the fields the document actually carries. Safe to
// call repeatedly with partial or complete data; last writer wins at the
// field level.
func (s *SyncService) patchShift(ctx context.Context, shiftID string, doc *models.StateDocument) error {
	sets := []string{"updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT"}
	args := []interface{}{}
	n := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if v := parseLocalPtr(doc.StartTime); v != nil {
		add("start_at", v)
	}
	if v := parseLocalPtr(doc.EndTime); v != nil {
		add("end_at", v)
	}
	if v := parseFloatPtr(doc.OdometerStart); v != nil {
		add("odometer_start", v)
	}
	if v := parseFloatPtr(doc.OdometerEnd); v != nil {
		add("odometer_end", v)
	}

	query := fmt.Sprintf("UPDATE shifts SET %s WHERE shift_id = $%d", strings.Join(sets, ", "), n)
	args = append(args, shiftID)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to patch shift %s: %w", shiftID, err)
	}
	return nil
}

func (s *SyncService) upsertDelivery(ctx context.Context, row models.Delivery) error {
	query := `
		INSERT INTO deliveries (delivery_id, user_id, shift_id, delivery_label, accepted_at, delivered_at, duration_text, platform_id, is_checked)
		VALUES (:delivery_id, :user_id, :shift_id, :delivery_label, :accepted_at, :delivered_at, :duration_text, :platform_id, :is_checked)
		ON CONFLICT (delivery_id) DO UPDATE SET
			shift_id = EXCLUDED.shift_id,
			delivery_label = EXCLUDED.delivery_label,
			accepted_at = EXCLUDED.accepted_at,
			delivered_at = EXCLUDED.delivered_at,
			duration_text = EXCLUDED.duration_text,
			platform_id = EXCLUDED.platform_id,
			is_checked = EXCLUDED.is_checked,
			updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
	`
	_, err := s.db.NamedExecContext(ctx, query, row)
	return err
}

func (s *SyncService) insertEarnings(ctx context.Context, row models.EarningsRow) error {
	query := `
		INSERT INTO earnings (user_id, shift_id, platform_id, earnings_date, delivery_pay, tips, adjustment_pay, total)
		VALUES (:user_id, :shift_id, :platform_id, :earnings_date, :delivery_pay, :tips, :adjustment_pay, :total)
	`
	_, err := s.db.NamedExecContext(ctx, query, row)
	return err
}

func parseLocalPtr(s string) *time.Time {
	t, ok := timeutil.ParseLocal(s)
	if !ok {
		return nil
	}
	return &t
}

func parseFloatPtr(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}
