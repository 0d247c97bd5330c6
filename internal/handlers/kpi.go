package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"earnroute-backend/internal/metrics"
	"earnroute-backend/internal/middleware"
	"earnroute-backend/internal/models"
	"earnroute-backend/internal/services"
	"earnroute-backend/internal/statestore"
	"earnroute-backend/pkg/utils"
)

// GetKPIs computes per-order economics from the current snapshots. Earnings
// exclude adjustment pay throughout.
func GetKPIs(store *statestore.Store) http.HandlerFunc {
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

		k := metrics.Compute(doc, es)
		utils.RespondData(w, http.StatusOK, map[string]interface{}{
			"completed_count": k.CompletedCount,
			"earnings":        fmt.Sprintf("%.2f", k.Earnings),
			"miles":           fmt.Sprintf("%.1f", k.Miles),
			"avg_order":       fmt.Sprintf("%.2f", k.AvgOrder),
			"miles_per_order": fmt.Sprintf("%.1f", k.MilesPerOrder),
			"pay_per_mile":    fmt.Sprintf("%.2f", k.PayPerMile),
			"avg_duration": map[string]string{
				"grubhub":  metrics.AverageDuration(doc, models.PlatformGrubhub),
				"ubereats": metrics.AverageDuration(doc, models.PlatformUberEats),
			},
		})
	}
}

// GetActiveTime returns total active time for one platform over a local
// calendar date or inclusive range. With source=remote the total is computed
// from the synced rows as interval overlap, which correctly apportions a
// delivery spanning a range boundary; the default local source buckets by
// delivered date.
func GetActiveTime(store *statestore.Store, syncSvc *services.SyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		platform := models.ParsePlatform(r.URL.Query().Get("platform"))
		if platform == models.PlatformUnknown {
			utils.RespondError(w, http.StatusBadRequest, "Unknown platform")
			return
		}

		today := time.Now().Format("2006-01-02")
		startYMD := r.URL.Query().Get("start")
		endYMD := r.URL.Query().Get("end")
		if d := r.URL.Query().Get("date"); d != "" {
			startYMD, endYMD = d, d
		}
		if startYMD == "" {
			startYMD = today
		}
		if endYMD == "" {
			endYMD = today
		}
		if startYMD > endYMD {
			startYMD, endYMD = endYMD, startYMD
		}

		var total time.Duration
		if r.URL.Query().Get("source") == "remote" {
			claims, ok := middleware.GetUserFromContext(r)
			if !ok {
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			windowStart, err1 := time.ParseInLocation("2006-01-02", startYMD, time.Local)
			windowEnd, err2 := time.ParseInLocation("2006-01-02", endYMD, time.Local)
			if err1 != nil || err2 != nil {
				utils.RespondError(w, http.StatusBadRequest, "Invalid date")
				return
			}
			var err error
			total, err = syncSvc.RemoteActiveTime(r.Context(), claims.UserID, platform, windowStart, windowEnd.AddDate(0, 0, 1))
			if err != nil {
				log.Printf("❌ Remote active time failed: %v", err)
				utils.RespondError(w, http.StatusInternalServerError, "Failed to compute active time")
				return
			}
		} else {
			doc, err := store.Load(r.Context())
			if err != nil {
				utils.RespondError(w, http.StatusInternalServerError, "Failed to load state")
				return
			}
			total = metrics.ActiveTimeForRange(doc, platform, startYMD, endYMD)
		}

		utils.RespondData(w, http.StatusOK, map[string]string{
			"platform": string(platform),
			"start":    startYMD,
			"end":      endYMD,
			"total":    metrics.FormatHMS(total),
		})
	}
}

// GetSummary mirrors the home-page pills: online duration, delivery count,
// mileage.
func GetSummary(store *statestore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := store.Load(r.Context())
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to load state")
			return
		}
		utils.RespondData(w, http.StatusOK, metrics.Summarize(doc, time.Now()))
	}
}
