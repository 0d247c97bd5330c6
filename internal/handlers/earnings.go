package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"earnroute-backend/internal/mapper"
	"earnroute-backend/internal/models"
	"earnroute-backend/internal/statestore"
	"earnroute-backend/pkg/utils"
)

// GetEarnings returns the cached earnings summary (last calculation).
func GetEarnings(store *statestore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		es, err := store.LoadEarnings(r.Context())
		if err != nil {
			log.Printf("❌ Error loading earnings: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to load earnings")
			return
		}
		utils.RespondData(w, http.StatusOK, es)
	}
}

// CalculateEarningsRequest carries the raw per-platform figures from the
// earnings sheet. Values are free-form strings; anything unparseable counts
// as zero.
type CalculateEarningsRequest struct {
	Grubhub  models.PlatformEarnings `json:"grubhub"`
	UberEats models.PlatformEarnings `json:"uberEats"`
}

// CalculateEarnings totals the sheet and caches the summary. Totals are
// recomputed here so total = deliveryPay + tips + adjustmentPay always
// holds, whatever the client sent.
func CalculateEarnings(store *statestore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CalculateEarningsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		gh := totalPlatform(req.Grubhub)
		ue := totalPlatform(req.UberEats)
		grand := mapper.Fix2(gh.Total) + mapper.Fix2(ue.Total)

		es := &models.EarningsSummary{
			Grubhub:    gh,
			UberEats:   ue,
			GrandTotal: fmt.Sprintf("%.2f", grand),
		}
		if err := store.SaveEarnings(r.Context(), es); err != nil {
			log.Printf("❌ Error saving earnings: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to save earnings")
			return
		}
		utils.RespondData(w, http.StatusOK, es)
	}
}

func totalPlatform(pe models.PlatformEarnings) models.PlatformEarnings {
	delivery := mapper.Fix2(pe.DeliveryPay)
	tips := mapper.Fix2(pe.Tips)
	adjust := mapper.Fix2(pe.AdjustmentPay)
	return models.PlatformEarnings{
		DeliveryPay:   fmt.Sprintf("%.2f", delivery),
		Tips:          fmt.Sprintf("%.2f", tips),
		AdjustmentPay: fmt.Sprintf("%.2f", adjust),
		Total:         fmt.Sprintf("%.2f", delivery+tips+adjust),
	}
}
