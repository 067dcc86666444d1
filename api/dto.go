/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the wallet domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/screenward/timewallet/wallet"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// EarnRequest credits minutes for a verified activity.
type EarnRequest struct {
	Type    string `json:"type"` // exercise | photo_task | custom
	Minutes int    `json:"minutes"`
	Details string `json:"details"`
}

// SpendRequest debits minutes for app/website usage.
type SpendRequest struct {
	PackageName string `json:"package_name"`
	AppName     string `json:"app_name"`
	Minutes     int    `json:"minutes"`
}

// ResetRequest forces the wallet to a known value.
type ResetRequest struct {
	Minutes int `json:"minutes"`
}

// SetLimitRequest updates the total daily limit.
type SetLimitRequest struct {
	Minutes int `json:"minutes"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// WalletDTO is the wallet aggregate plus the display mirrors the UI binds to.
type WalletDTO struct {
	TotalEarned       int       `json:"total_earned"`
	AvailableMinutes  int       `json:"available_minutes"`
	LastUpdated       time.Time `json:"last_updated"`
	TotalDailyLimit   int       `json:"total_daily_limit"`
	TotalUsedToday    int       `json:"total_used_today"`
	TotalRemaining    int       `json:"total_remaining_limit"`
	NativeEarnedToday int       `json:"native_earned_today"`
	NativeSpentToday  int       `json:"native_spent_today"`
}

// SpendResponse carries the boolean spend contract. Insufficient balance
// is a 200 with success=false, not an HTTP error.
type SpendResponse struct {
	Success          bool   `json:"success"`
	Reason           string `json:"reason,omitempty"`
	AvailableMinutes int    `json:"available_minutes"`
}

// StreakDTO is the streak state plus the one-shot celebration gate.
type StreakDTO struct {
	CurrentStreak     int    `json:"current_streak"`
	LongestStreak     int    `json:"longest_streak"`
	LastEarningDate   string `json:"last_earning_date"`
	StreakShownToday  bool   `json:"streak_shown_today"`
	FirstEarningToday bool   `json:"first_earning_today"`
}

// ActivityResponse reports whether a qualifying call was the day's first.
type ActivityResponse struct {
	FirstOfDay bool              `json:"first_of_day"`
	Streak     wallet.StreakData `json:"streak"`
}

// SyncResponse reports minutes pulled from the native authority.
type SyncResponse struct {
	SyncedMinutes int `json:"synced_minutes"`
}

// TodayStatsDTO is the today rollup plus usage accounting.
type TodayStatsDTO struct {
	Earned         int            `json:"earned"`
	Spent          int            `json:"spent"`
	TotalUsed      int            `json:"total_used"`
	AppUsage       map[string]int `json:"app_usage"`
	TotalRemaining int            `json:"total_remaining_limit"`
}

func toWalletDTO(e *wallet.Engine) WalletDTO {
	w := e.Wallet()
	return WalletDTO{
		TotalEarned:       w.TotalEarned,
		AvailableMinutes:  w.AvailableMinutes,
		LastUpdated:       w.LastUpdated,
		TotalDailyLimit:   e.TotalDailyLimit(),
		TotalUsedToday:    e.TotalUsageToday(),
		TotalRemaining:    e.TotalRemainingLimit(),
		NativeEarnedToday: e.NativeEarnedToday(),
		NativeSpentToday:  e.NativeSpentToday(),
	}
}

func toStreakDTO(e *wallet.Engine) StreakDTO {
	s := e.Streak()
	return StreakDTO{
		CurrentStreak:     s.CurrentStreak,
		LongestStreak:     s.LongestStreak,
		LastEarningDate:   s.LastEarningDate,
		StreakShownToday:  s.StreakShownToday,
		FirstEarningToday: e.IsFirstEarningToday(),
	}
}
