// Package statestore owns the persisted state document: one JSON blob under
// a well-known key in Redis, plus a refresh-signal token other devices watch
// to know the document changed.
package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"earnroute-backend/internal/models"
	"earnroute-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// StateKey holds the serialized StateDocument blob.
	StateKey = "deliveryAppState"
	// EarningsKey holds the cached EarningsSummary.
	EarningsKey = "earningsSummary"
	// RefreshKey holds a millisecond timestamp token. Bumping it is the sole
	// mechanism by which other devices learn the document changed.
	RefreshKey = "adminTriggerRefresh"
)

var (
	ErrMealNotFound = errors.New("meal not found")
	ErrDelivered    = errors.New("delivered entries are immutable")
	ErrNoAccepted   = errors.New("meal has no accepted time")
	ErrNoCourier    = errors.New("meal has no courier set")
)

// Store reads and writes the state document. All mutations are wholesale
// read-modify-write of the single blob.
type Store struct {
	rdb *redis.Client
	now func() time.Time
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, now: time.Now}
}

// WithClock overrides the time source. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Load reads the persisted blob. A missing key or a parse failure yields an
// empty document; a missing meals field defaults to an empty slice. Entries
// lacking an id are backfilled with a fresh one and the healed document is
// persisted immediately.
func (s *Store) Load(ctx context.Context) (*models.StateDocument, error) {
	doc := &models.StateDocument{}

	raw, err := s.rdb.Get(ctx, StateKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	if err == nil {
		// Parse failure is treated as an empty object, not an error.
		_ = json.Unmarshal([]byte(raw), doc)
	}
	if doc.Meals == nil {
		doc.Meals = []models.DeliveryEntry{}
	}

	mutated := false
	for i := range doc.Meals {
		if doc.Meals[i].ID == "" {
			doc.Meals[i].ID = uuid.New().String()
			mutated = true
		}
	}
	if mutated {
		if err := s.Save(ctx, doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Save persists the blob and bumps the refresh-signal token.
func (s *Store) Save(ctx context.Context, doc *models.StateDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := s.rdb.Set(ctx, StateKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	token := strconv.FormatInt(s.now().UnixMilli(), 10)
	if err := s.rdb.Set(ctx, RefreshKey, token, 0).Err(); err != nil {
		return fmt.Errorf("failed to write refresh token: %w", err)
	}
	return nil
}

// RefreshToken returns the current refresh-signal token, or "" when none
// has been written yet.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	token, err := s.rdb.Get(ctx, RefreshKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return token, err
}

// LoadEarnings reads the cached earnings summary. Missing or malformed data
// yields a zero summary.
func (s *Store) LoadEarnings(ctx context.Context) (*models.EarningsSummary, error) {
	es := &models.EarningsSummary{}
	raw, err := s.rdb.Get(ctx, EarningsKey).Result()
	if errors.Is(err, redis.Nil) {
		return es, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read earnings: %w", err)
	}
	_ = json.Unmarshal([]byte(raw), es)
	return es, nil
}

// HasEarnings reports whether an earnings summary has been saved.
func (s *Store) HasEarnings(ctx context.Context) (bool, error) {
	n, err := s.rdb.Exists(ctx, EarningsKey).Result()
	return n > 0, err
}

func (s *Store) SaveEarnings(ctx context.Context, es *models.EarningsSummary) error {
	data, err := json.Marshal(es)
	if err != nil {
		return fmt.Errorf("failed to encode earnings: %w", err)
	}
	if err := s.rdb.Set(ctx, EarningsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write earnings: %w", err)
	}
	return nil
}

// ReplaceMeals swaps the meals array wholesale while preserving every other
// document field. Used by the sync pull.
func (s *Store) ReplaceMeals(ctx context.Context, meals []models.DeliveryEntry) error {
	doc, err := s.Load(ctx)
	if err != nil {
		return err
	}
	doc.Meals = meals
	return s.Save(ctx, doc)
}

// Reset wipes both documents and reseeds a single untouched "1st Meal".
func (s *Store) Reset(ctx context.Context) (*models.StateDocument, error) {
	if err := s.rdb.Del(ctx, StateKey, EarningsKey).Err(); err != nil {
		return nil, fmt.Errorf("failed to clear state: %w", err)
	}
	doc := &models.StateDocument{
		Meals: []models.DeliveryEntry{{ID: uuid.New().String(), Label: models.OrdinalLabel(1)}},
	}
	if err := s.Save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Partition splits entries for display: completed (delivered set) sorted
// ascending by parsed accepted time with unparseable accepted sorting last,
// and active (everything else) in insertion order.
func Partition(doc *models.StateDocument) (active, completed []models.DeliveryEntry) {
	for _, m := range doc.Meals {
		if m.Completed() {
			completed = append(completed, m)
		} else {
			active = append(active, m)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return acceptedSortKey(completed[i]) < acceptedSortKey(completed[j])
	})
	return active, completed
}

func acceptedSortKey(m models.DeliveryEntry) int64 {
	t, ok := timeutil.ParseLocal(timeutil.StripAcceptedPrefix(m.Timestamp))
	if !ok {
		return int64(1<<63 - 1)
	}
	return t.UnixMilli()
}
