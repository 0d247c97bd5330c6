package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"earnroute-backend/internal/middleware"
	"earnroute-backend/pkg/utils"
)

type registerFCMTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}

// RegisterFCMToken upserts a device token for the authenticated user so sync
// notifications reach all of their devices.
func RegisterFCMToken(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req registerFCMTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
			utils.RespondError(w, http.StatusBadRequest, "Token is required")
			return
		}
		switch req.DeviceType {
		case "ios", "android", "web":
		default:
			req.DeviceType = "web"
		}

		now := time.Now().Unix()
		_, err := db.Exec(`
			INSERT INTO fcm_tokens (user_id, token, device_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (token) DO UPDATE SET
				user_id = EXCLUDED.user_id,
				device_type = EXCLUDED.device_type,
				updated_at = EXCLUDED.updated_at`,
			claims.UserID, req.Token, req.DeviceType, now)
		if err != nil {
			log.Printf("❌ Failed to register FCM token for user %s: %v", claims.UserID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to register token")
			return
		}

		log.Printf("📱 Registered %s token for user %s", req.DeviceType, claims.UserID)
		utils.RespondData(w, http.StatusOK, map[string]string{"message": "Token registered"})
	}
}
