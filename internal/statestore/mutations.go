package statestore

import (
	"context"
	"fmt"

	"earnroute-backend/internal/models"
	"earnroute-backend/internal/timeutil"

	"github.com/google/uuid"
)

// AddMeal appends a new untouched entry with the next ordinal label.
// Returns (nil, nil) once the cap is reached: the 26th add is a silent
// no-op, not an error.
func (s *Store) AddMeal(ctx context.Context) (*models.DeliveryEntry, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(doc.Meals) >= models.MaxMeals {
		return nil, nil
	}
	meal := models.DeliveryEntry{
		ID:    uuid.New().String(),
		Label: models.OrdinalLabel(len(doc.Meals) + 1),
	}
	doc.Meals = append(doc.Meals, meal)
	if err := s.Save(ctx, doc); err != nil {
		return nil, err
	}
	return &meal, nil
}

// ToggleAccepted flips the checked flag. Checking stamps the accepted time
// with the current clock; unchecking clears it. Delivered entries are
// terminal and cannot be toggled.
func (s *Store) ToggleAccepted(ctx context.Context, id string) (*models.DeliveryEntry, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	meal := doc.Meal(id)
	if meal == nil {
		return nil, ErrMealNotFound
	}
	if meal.Completed() {
		return nil, ErrDelivered
	}
	meal.Checked = !meal.Checked
	if meal.Checked {
		meal.Timestamp = timeutil.WithAcceptedPrefix(timeutil.FormatLocale(s.now()))
	} else {
		meal.Timestamp = ""
		meal.Duration = ""
	}
	if err := s.Save(ctx, doc); err != nil {
		return nil, err
	}
	return meal, nil
}

// SetCourier assigns the platform on an active entry. Recognized aliases are
// normalized to the canonical code; unrecognized strings are stored as-is
// and resolved (or not) by the mapper at push time.
func (s *Store) SetCourier(ctx context.Context, id, courier string) (*models.DeliveryEntry, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	meal := doc.Meal(id)
	if meal == nil {
		return nil, ErrMealNotFound
	}
	if meal.Completed() {
		return nil, ErrDelivered
	}
	if p := models.ParsePlatform(courier); p != models.PlatformUnknown {
		courier = string(p)
	}
	meal.Courier = courier
	if err := s.Save(ctx, doc); err != nil {
		return nil, err
	}
	return meal, nil
}

// MarkDelivered stamps the delivered time with the current clock and
// recomputes the duration label. Delivered is always "now" in this path, so
// the delivered >= accepted invariant holds by construction. The entry
// becomes terminal.
func (s *Store) MarkDelivered(ctx context.Context, id string) (*models.DeliveryEntry, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	meal := doc.Meal(id)
	if meal == nil {
		return nil, ErrMealNotFound
	}
	if meal.Completed() {
		return nil, ErrDelivered
	}
	accepted, ok := timeutil.ParseLocal(timeutil.StripAcceptedPrefix(meal.Timestamp))
	if !ok {
		return nil, ErrNoAccepted
	}
	if meal.Courier == "" {
		return nil, ErrNoCourier
	}
	now := s.now()
	meal.Delivered = timeutil.FormatLocale(now)
	meal.Duration = timeutil.FormatDurationHM(accepted, now)
	if err := s.Save(ctx, doc); err != nil {
		return nil, err
	}
	return meal, nil
}

// RemoveMeal deletes an entry by id. Whether the entry is removable (neither
// accepted nor delivered set) is the caller's contract, not enforced here.
func (s *Store) RemoveMeal(ctx context.Context, id string) error {
	doc, err := s.Load(ctx)
	if err != nil {
		return err
	}
	for i := range doc.Meals {
		if doc.Meals[i].ID == id {
			doc.Meals = append(doc.Meals[:i], doc.Meals[i+1:]...)
			return s.Save(ctx, doc)
		}
	}
	return ErrMealNotFound
}

// ShiftPatch carries partial shift-scalar updates; nil fields are left
// untouched.
type ShiftPatch struct {
	StartTime     *string `json:"startTime"`
	EndTime       *string `json:"endTime"`
	OdometerStart *string `json:"odometerStart"`
	OdometerEnd   *string `json:"odometerEnd"`
}

// PatchShift applies non-nil fields of the patch to the document.
func (s *Store) PatchShift(ctx context.Context, patch ShiftPatch) (*models.StateDocument, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if patch.StartTime != nil {
		doc.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		doc.EndTime = *patch.EndTime
	}
	if patch.OdometerStart != nil {
		doc.OdometerStart = *patch.OdometerStart
	}
	if patch.OdometerEnd != nil {
		doc.OdometerEnd = *patch.OdometerEnd
	}
	if err := s.Save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// MealEdit is one card from the bulk editor: accepted/delivered in the
// storage-local input shape ("2006-01-02T15:04:05", seconds optional).
type MealEdit struct {
	ID        string `json:"id"`
	Accepted  string `json:"accepted"`
	Delivered string `json:"delivered"`
}

// ValidateEdits checks every card and returns the full list of human-readable
// violations. An empty slice means the batch may be applied.
func ValidateEdits(doc *models.StateDocument, edits []MealEdit) []string {
	var errs []string
	for _, e := range edits {
		meal := doc.Meal(e.ID)
		if meal == nil {
			errs = append(errs, fmt.Sprintf("Meal %s: unknown entry.", e.ID))
			continue
		}
		if e.Accepted == "" && e.Delivered != "" {
			errs = append(errs, fmt.Sprintf("Meal %s: Delivered cannot exist if Accepted is empty.", meal.Label))
			continue
		}
		if e.Accepted != "" && e.Delivered != "" {
			a, aok := timeutil.ParseLocal(e.Accepted)
			d, dok := timeutil.ParseLocal(e.Delivered)
			if !aok || !dok {
				errs = append(errs, fmt.Sprintf("Meal %s: Invalid date/time value.", meal.Label))
			} else if d.Before(a) {
				errs = append(errs, fmt.Sprintf("Meal %s: Delivered must be on/after Accepted.", meal.Label))
			}
		}
	}
	return errs
}

// BulkEdit applies the administrative editor's save: validation first, then
// per-card seconds normalization, jitter for the ":00" manual-entry
// artifact, and the delivered-before-accepted nudge. Returns the validation
// list without mutating anything when it is non-empty.
func (s *Store) BulkEdit(ctx context.Context, edits []MealEdit) ([]string, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if errs := ValidateEdits(doc, edits); len(errs) > 0 {
		return errs, nil
	}

	for _, e := range edits {
		meal := doc.Meal(e.ID)
		if meal == nil {
			continue
		}

		accepted := timeutil.JitterSeconds(timeutil.NormalizeStorageSeconds(e.Accepted))
		delivered := timeutil.JitterSeconds(timeutil.NormalizeStorageSeconds(e.Delivered))
		accepted, delivered = timeutil.NudgeDelivered(accepted, delivered)

		acceptedLocale := timeutil.ToLocale(accepted)
		deliveredLocale := ""
		if acceptedLocale != "" {
			// Accepted cleared means delivered is cleared too.
			deliveredLocale = timeutil.ToLocale(delivered)
		}

		meal.Timestamp = timeutil.WithAcceptedPrefix(acceptedLocale)
		meal.Delivered = deliveredLocale
		meal.Duration = ""
		if acceptedLocale != "" && deliveredLocale != "" {
			a, aok := timeutil.ParseLocal(acceptedLocale)
			d, dok := timeutil.ParseLocal(deliveredLocale)
			if aok && dok {
				meal.Duration = timeutil.FormatDurationHM(a, d)
			}
		}
	}

	if err := s.Save(ctx, doc); err != nil {
		return nil, err
	}
	return nil, nil
}
