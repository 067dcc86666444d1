/*
handlers.go - HTTP handlers over the wallet engine

PURPOSE:
  Exposes the earned-time engine to the UI layer (and to local debugging)
  as a small REST surface. Handlers parse and validate input, call the
  engine, and serialize the result; all domain rules live in the wallet
  package.

ENDPOINTS:
  Wallet:
    GET  /api/wallet                  Wallet aggregate + display mirrors
    POST /api/wallet/earn             Credit minutes for an activity
    POST /api/wallet/spend            Debit minutes (boolean contract)
    POST /api/wallet/urgent-spend     Unconditional debit (may go negative)
    POST /api/wallet/free-usage       Record schedule-free usage
    GET  /api/wallet/can-use          Usage policy decision
    POST /api/wallet/reset            Administrative reset

  Limits:
    GET  /api/limits/total            Current total daily limit
    PUT  /api/limits/total            Update + mirror to authority

  History & stats:
    GET  /api/history/earnings        Earning log, newest first
    GET  /api/history/spending        Spending log, newest first
    GET  /api/stats/today             Today rollup + usage map
    GET  /api/stats/week              Rolling 7x24h window
    GET  /api/stats/weekly-daily      Monday-aligned calendar week
    GET  /api/stats/day/{date}        One calendar day (YYYY-MM-DD)

  Streak:
    GET  /api/streak                  Streak state + celebration gate
    POST /api/streak/activity         Qualifying call without time reward
    POST /api/streak/shown            Mark celebration as shown

  Sync:
    POST /api/sync                    Pull native usage + balance

ERROR HANDLING:
  - 400: Malformed body, non-positive minutes, bad date
  - 500: Store failures surfaced by Load/sync
  Insufficient balance is NOT an error: POST /api/wallet/spend answers
  200 with success=false, mirroring the engine's boolean contract.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/screenward/timewallet/wallet"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine  *wallet.Engine
	Metrics *Metrics
}

// NewHandler creates a handler over the given engine.
func NewHandler(engine *wallet.Engine, metrics *Metrics) *Handler {
	return &Handler{Engine: engine, Metrics: metrics}
}

// =============================================================================
// WALLET
// =============================================================================

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toWalletDTO(h.Engine))
}

func (h *Handler) Earn(w http.ResponseWriter, r *http.Request) {
	var req EarnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Minutes <= 0 {
		writeError(w, http.StatusBadRequest, "Minutes must be positive", nil)
		return
	}
	typ := wallet.EarningType(req.Type)
	switch typ {
	case wallet.EarnExercise, wallet.EarnPhotoTask, wallet.EarnCustom:
	default:
		typ = wallet.EarnCustom
	}

	h.Engine.EarnTime(r.Context(), typ, req.Minutes, req.Details)
	h.Metrics.EarnedMinutes.Add(float64(req.Minutes))
	writeJSON(w, http.StatusOK, toWalletDTO(h.Engine))
}

func (h *Handler) Spend(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSpend(w, r)
	if !ok {
		return
	}

	success := h.Engine.SpendTime(r.Context(), req.PackageName, req.AppName, req.Minutes)
	resp := SpendResponse{
		Success:          success,
		AvailableMinutes: h.Engine.Wallet().AvailableMinutes,
	}
	if success {
		h.Metrics.SpentMinutes.Add(float64(req.Minutes))
	} else {
		h.Metrics.SpendRejections.Inc()
		resp.Reason = "insufficient_balance"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) UrgentSpend(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSpend(w, r)
	if !ok {
		return
	}

	h.Engine.UrgentSpend(r.Context(), req.PackageName, req.AppName, req.Minutes)
	h.Metrics.UrgentSpends.Inc()
	writeJSON(w, http.StatusOK, SpendResponse{
		Success:          true,
		AvailableMinutes: h.Engine.Wallet().AvailableMinutes,
	})
}

func (h *Handler) FreeUsage(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSpend(w, r)
	if !ok {
		return
	}

	h.Engine.RecordFreeUsage(r.Context(), req.PackageName, req.AppName, req.Minutes)
	writeJSON(w, http.StatusOK, toWalletDTO(h.Engine))
}

func (h *Handler) CanUse(w http.ResponseWriter, r *http.Request) {
	packageName := r.URL.Query().Get("package")
	if packageName == "" {
		writeError(w, http.StatusBadRequest, "Missing package query parameter", nil)
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "Invalid limit query parameter", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Engine.CanUseApp(packageName, limit))
}

func (h *Handler) ResetWallet(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Minutes < 0 {
		writeError(w, http.StatusBadRequest, "Minutes must be non-negative", nil)
		return
	}
	h.Engine.ResetWallet(r.Context(), req.Minutes)
	writeJSON(w, http.StatusOK, toWalletDTO(h.Engine))
}

// =============================================================================
// LIMITS
// =============================================================================

func (h *Handler) GetTotalLimit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"minutes": h.Engine.TotalDailyLimit()})
}

func (h *Handler) SetTotalLimit(w http.ResponseWriter, r *http.Request) {
	var req SetLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Minutes <= 0 {
		writeError(w, http.StatusBadRequest, "Minutes must be positive", nil)
		return
	}
	h.Engine.SetTotalDailyLimit(r.Context(), req.Minutes)
	writeJSON(w, http.StatusOK, map[string]int{"minutes": h.Engine.TotalDailyLimit()})
}

// =============================================================================
// HISTORY & STATS
// =============================================================================

func (h *Handler) EarningHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.EarningHistory())
}

func (h *Handler) SpendingHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.SpendingHistory())
}

func (h *Handler) TodayStats(w http.ResponseWriter, r *http.Request) {
	usage := h.Engine.TodayUsage()
	writeJSON(w, http.StatusOK, TodayStatsDTO{
		Earned:         h.Engine.TodayEarned(r.Context()),
		Spent:          h.Engine.TodaySpent(r.Context()),
		TotalUsed:      h.Engine.TotalUsageToday(),
		AppUsage:       usage.AppUsage,
		TotalRemaining: h.Engine.TotalRemainingLimit(),
	})
}

func (h *Handler) WeekStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.WeekStats(r.Context()))
}

func (h *Handler) WeeklyDailyStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.WeeklyDailyStats(r.Context()))
}

func (h *Handler) DayStats(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := wallet.ParseDayKey(date); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Engine.DayStats(date))
}

// =============================================================================
// STREAK
// =============================================================================

func (h *Handler) GetStreak(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toStreakDTO(h.Engine))
}

func (h *Handler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	first := h.Engine.RecordActivity(r.Context())
	writeJSON(w, http.StatusOK, ActivityResponse{
		FirstOfDay: first,
		Streak:     h.Engine.Streak(),
	})
}

func (h *Handler) MarkStreakShown(w http.ResponseWriter, r *http.Request) {
	h.Engine.MarkStreakShown(r.Context())
	writeJSON(w, http.StatusOK, toStreakDTO(h.Engine))
}

// =============================================================================
// SYNC
// =============================================================================

func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	synced, err := h.Engine.SyncUsage(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Native sync failed", err)
		return
	}
	writeJSON(w, http.StatusOK, SyncResponse{SyncedMinutes: synced})
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeSpend(w http.ResponseWriter, r *http.Request) (SpendRequest, bool) {
	var req SpendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return req, false
	}
	if req.PackageName == "" {
		writeError(w, http.StatusBadRequest, "Missing package_name", nil)
		return req, false
	}
	if req.Minutes <= 0 {
		writeError(w, http.StatusBadRequest, "Minutes must be positive", nil)
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]string{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
