package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"

	"earnroute-backend/internal/middleware"
	"earnroute-backend/internal/services"
	"earnroute-backend/internal/websocket"
	"earnroute-backend/pkg/utils"
)

// PushSync writes the current snapshots to the relational backend: upserts
// deliveries by id, patches the open shift, appends an earnings batch.
func PushSync(db *sqlx.DB, syncSvc *services.SyncService, hub *websocket.Hub, fcm *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		result, err := syncSvc.Push(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, services.ErrNotAuthenticated) {
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			log.Printf("❌ Push failed for user %s: %v", claims.UserID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Sync push failed")
			return
		}

		log.Printf("☁️ Push complete for user %s: %d deliveries, %d earnings rows", claims.UserID, result.Deliveries, result.EarningsRows)
		hub.NotifySyncCompleted(claims.UserID, result.Deliveries)
		if fcm != nil {
			go notifyDevices(db, fcm, claims.UserID, result.Deliveries)
		}

		utils.RespondData(w, http.StatusOK, result)
	}
}

// PullSync replaces the local delivery cards with the synced rows and
// rebuilds the earnings snapshot from the latest row per platform. Shift
// fields and odometer readings are left untouched.
func PullSync(syncSvc *services.SyncService, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		doc, err := syncSvc.Pull(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, services.ErrNotAuthenticated) {
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			log.Printf("❌ Pull failed for user %s: %v", claims.UserID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Sync pull failed")
			return
		}

		log.Printf("☁️ Pull complete for user %s: %d cards", claims.UserID, len(doc.Meals))
		hub.NotifyStateUpdated(claims.UserID, "")
		utils.RespondData(w, http.StatusOK, doc)
	}
}

// notifyDevices pushes a sync-completed notification to every registered
// device token for the user. Failures are logged and skipped.
func notifyDevices(db *sqlx.DB, fcm *services.FCMService, userID string, deliveries int) {
	var tokens []string
	if err := db.Select(&tokens, "SELECT token FROM fcm_tokens WHERE user_id = $1", userID); err != nil {
		log.Printf("⚠️ Failed to load FCM tokens for user %s: %v", userID, err)
		return
	}
	for _, token := range tokens {
		if err := fcm.SendSyncCompletedNotification(token, deliveries); err != nil {
			log.Printf("⚠️ FCM send failed: %v", err)
		}
	}
}
