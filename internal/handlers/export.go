package handlers

import (
	"net/http"
	"time"

	"earnroute-backend/internal/statestore"
	"earnroute-backend/pkg/utils"
)

// ExportState bundles both snapshots with a timestamp, suitable for a
// download-and-restore backup.
func ExportState(store *statestore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := store.Load(r.Context())
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to load state")
			return
		}
		es, err := store.LoadEarnings(r.Context())
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to load earnings")
			return
		}

		utils.RespondData(w, http.StatusOK, map[string]interface{}{
			"exportedAt":       time.Now().Format(time.RFC3339),
			"deliveryAppState": doc,
			"earningsSummary":  es,
		})
	}
}
