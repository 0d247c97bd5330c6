package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"earnroute-backend/internal/middleware"
	"earnroute-backend/internal/statestore"
	"earnroute-backend/internal/websocket"
	"earnroute-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// notifyRefresh pushes the latest refresh token to the user's other devices.
// Failures here never fail the request: the signal is best-effort.
func notifyRefresh(r *http.Request, store *statestore.Store, hub *websocket.Hub) {
	claims, ok := middleware.GetUserFromContext(r)
	if !ok {
		return
	}
	token, err := store.RefreshToken(r.Context())
	if err != nil {
		log.Printf("⚠️  Failed to read refresh token: %v", err)
		return
	}
	hub.NotifyStateUpdated(claims.UserID, token)
}

// GetState returns the full state document plus the display partitions.
func GetState(store *statestore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := store.Load(r.Context())
		if err != nil {
			log.Printf("❌ Error loading state: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to load state")
			return
		}
		active, completed := statestore.Partition(doc)
		utils.RespondData(w, http.StatusOK, map[string]interface{}{
			"state":     doc,
			"active":    active,
			"completed": completed,
		})
	}
}

// AddMeal appends a new entry. Past the 25-entry cap this is a silent no-op
// that reports full=true so the UI can stop offering the button.
func AddMeal(store *statestore.Store, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meal, err := store.AddMeal(r.Context())
		if err != nil {
			log.Printf("❌ Error adding meal: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to add meal")
			return
		}
		if meal == nil {
			utils.RespondData(w, http.StatusOK, map[string]interface{}{"full": true})
			return
		}
		notifyRefresh(r, store, hub)
		utils.RespondData(w, http.StatusCreated, meal)
	}
}

// ToggleMeal flips an entry's accepted state.
func ToggleMeal(store *statestore.Store, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meal, err := store.ToggleAccepted(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondMutationError(w, err)
			return
		}
		notifyRefresh(r, store, hub)
		utils.RespondData(w, http.StatusOK, meal)
	}
}

// SetCourier assigns a platform to an active entry.
func SetCourier(store *statestore.Store, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Courier string `json:"courier"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		meal, err := store.SetCourier(r.Context(), chi.URLParam(r, "id"), req.Courier)
		if err != nil {
			respondMutationError(w, err)
			return
		}
		notifyRefresh(r, store, hub)
		utils.RespondData(w, http.StatusOK, meal)
	}
}

// MarkDelivered stamps the delivered time. Delivered is always "now" here,
// so delivered >= accepted holds by construction; the entry becomes
// terminal.
func MarkDelivered(store *statestore.Store, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meal, err := store.MarkDelivered(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondMutationError(w, err)
			return
		}
		notifyRefresh(r, store, hub)
		utils.RespondData(w, http.StatusOK, meal)
	}
}

// RemoveMeal deletes an untouched entry. Entries with any timestamp have no
// delete path short of a wholesale reset.
func RemoveMeal(store *statestore.Store, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		doc, err := store.Load(r.Context())
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to load state")
			return
		}
		meal := doc.Meal(id)
		if meal == nil {
			utils.RespondError(w, http.StatusNotFound, "Meal not found")
			return
		}
		if !meal.Untouched() {
			utils.RespondError(w, http.StatusConflict, "Only untouched meals can be removed")
			return
		}

		if err := store.RemoveMeal(r.Context(), id); err != nil {
			respondMutationError(w, err)
			return
		}
		notifyRefresh(r, store, hub)
		utils.RespondData(w, http.StatusOK, map[string]interface{}{"removed": id})
	}
}

// PatchShift updates the shift scalars; only fields present in the body are
// touched. The editor requires a start before an end time.
func PatchShift(store *statestore.Store, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch statestore.ShiftPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if patch.EndTime != nil && *patch.EndTime != "" {
			doc, err := store.Load(r.Context())
			if err != nil {
				utils.RespondError(w, http.StatusInternalServerError, "Failed to load state")
				return
			}
			start := doc.StartTime
			if patch.StartTime != nil {
				start = *patch.StartTime
			}
			if start == "" {
				utils.RespondError(w, http.StatusUnprocessableEntity, "Start time is required before end time")
				return
			}
		}

		doc, err := store.PatchShift(r.Context(), patch)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update shift")
			return
		}
		notifyRefresh(r, store, hub)
		utils.RespondData(w, http.StatusOK, doc)
	}
}

// ResetState wipes the document and earnings and reseeds "1st Meal".
func ResetState(store *statestore.Store, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := store.Reset(r.Context())
		if err != nil {
			log.Printf("❌ Error resetting state: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to reset state")
			return
		}
		notifyRefresh(r, store, hub)
		utils.RespondData(w, http.StatusOK, doc)
	}
}

// BulkEdit applies the administrative editor's save. Validation violations
// come back as a persistent list the editor shows inline until corrected.
func BulkEdit(store *statestore.Store, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Edits []statestore.MealEdit `json:"edits"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		violations, err := store.BulkEdit(r.Context(), req.Edits)
		if err != nil {
			log.Printf("❌ Error applying bulk edit: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to save changes")
			return
		}
		if len(violations) > 0 {
			utils.RespondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"success": false,
				"errors":  violations,
			})
			return
		}
		notifyRefresh(r, store, hub)
		utils.RespondData(w, http.StatusOK, map[string]interface{}{
			"message": "All changes saved. Seconds auto-adjusted where needed.",
		})
	}
}

func respondMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, statestore.ErrMealNotFound):
		utils.RespondError(w, http.StatusNotFound, "Meal not found")
	case errors.Is(err, statestore.ErrDelivered):
		utils.RespondError(w, http.StatusConflict, "Delivered entries are immutable")
	case errors.Is(err, statestore.ErrNoAccepted):
		utils.RespondError(w, http.StatusConflict, "Meal has no accepted time")
	case errors.Is(err, statestore.ErrNoCourier):
		utils.RespondError(w, http.StatusConflict, "Pick a courier before marking delivered")
	default:
		log.Printf("❌ State mutation failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "State update failed")
	}
}
