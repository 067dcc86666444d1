/*
Package wallet implements the earned-time wallet: a spendable balance of
screen-time minutes earned through verified activities and spent against
blocked-app usage.

PURPOSE:
  This package is the core of the focus app. It owns the wallet aggregate,
  the earning/spending logs, per-day usage accounting, the usage streak,
  and the derived day/week statistics. UI layers bind to an Engine instance
  and call the documented operations; nothing else mutates this state.

KEY CONCEPTS IN THIS FILE (types.go):
  - Wallet: the singleton balance aggregate (total earned + available)
  - EarningRecord / SpendingRecord: append-only, capped activity logs
  - DailyUsage: per-calendar-day map of minutes consumed per app/site
  - StreakData: consecutive qualifying-day tracking
  - UsageDecision: the canUseApp policy result

DESIGN PRINCIPLES:
  1. Minutes are integers. Earning and spending granularity is one minute;
     there is nothing to gain from sub-minute precision here.
  2. Logs are append-only and size-capped. Corrections happen by appending,
     never by editing history.
  3. Calendar days are local-time YYYY-MM-DD strings, because every rule in
     this domain ("today", "yesterday", streaks, daily limits) is a local
     calendar rule, not a UTC instant rule.

SEE ALSO:
  - engine.go: The operations that mutate these types
  - store.go: How snapshots of these types are persisted
  - authority.go: The platform-native balance owner
*/
package wallet

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// WALLET - Singleton balance aggregate
// =============================================================================

// Wallet is the spendable earned-time balance. One per user/device.
//
// AvailableMinutes is normally non-negative but may go negative after an
// urgent spend (emergency override). TotalEarned is a display-only all-time
// counter and never decreases except through ResetWallet.
//
// On platforms with a native balance authority, AvailableMinutes is a
// mirror of the authority's value and is resynced on load and after every
// mutation; see authority.go.
type Wallet struct {
	TotalEarned      int       `json:"totalEarned"`
	AvailableMinutes int       `json:"availableMinutes"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// =============================================================================
// EARNING LOG
// =============================================================================

// EarningType classifies how minutes were earned.
type EarningType string

const (
	EarnExercise  EarningType = "exercise"
	EarnPhotoTask EarningType = "photo_task"
	EarnCustom    EarningType = "custom"
)

// EarningRecord is one append-only earning log entry.
type EarningRecord struct {
	ID            string      `json:"id"`
	Type          EarningType `json:"type"`
	MinutesEarned int         `json:"minutesEarned"`
	Details       string      `json:"details"`
	Timestamp     time.Time   `json:"timestamp"`
}

// SpendingRecord is one append-only spending log entry.
//
// PackageName identifies the target: an app package name, or
// "website:<domain>" for tracked websites. WasScheduleFree marks usage that
// happened inside a scheduled free window: it counts toward daily limits
// but was never charged against the wallet, and display-level "spent"
// sums exclude it.
type SpendingRecord struct {
	ID              string    `json:"id"`
	PackageName     string    `json:"packageName"`
	AppName         string    `json:"appName"`
	MinutesSpent    int       `json:"minutesSpent"`
	WasScheduleFree bool      `json:"wasScheduleFree"`
	Timestamp       time.Time `json:"timestamp"`
}

// WebsitePrefix marks website identifiers in spending records and usage maps.
const WebsitePrefix = "website:"

// maxLogEntries caps both activity logs; the oldest entry is evicted.
const maxLogEntries = 100

// newRecordID returns a unique, time-derived record identifier.
func newRecordID(at time.Time) string {
	return fmt.Sprintf("%d-%s", at.UnixMilli(), uuid.NewString()[:8])
}

// capRecords keeps the newest-first log at maxLogEntries.
func capRecords[T any](log []T) []T {
	if len(log) > maxLogEntries {
		return log[:maxLogEntries]
	}
	return log
}

// =============================================================================
// DAILY USAGE - Per-calendar-day consumption accounting
// =============================================================================

// DailyUsage tracks minutes consumed per app/website for one calendar day.
// When Date no longer matches today, the map is discarded and restarted;
// historical per-day numbers come from the spending log, not from here.
type DailyUsage struct {
	Date     string         `json:"date"` // local YYYY-MM-DD
	AppUsage map[string]int `json:"appUsage"`
}

func newDailyUsage(date string) DailyUsage {
	return DailyUsage{Date: date, AppUsage: make(map[string]int)}
}

// =============================================================================
// STREAK
// =============================================================================

// StreakData tracks consecutive qualifying days. A qualifying day is any
// local calendar day with at least one earning or recorded activity.
type StreakData struct {
	CurrentStreak    int    `json:"currentStreak"`
	LongestStreak    int    `json:"longestStreak"`
	LastEarningDate  string `json:"lastEarningDate"` // YYYY-MM-DD, "" if never
	StreakShownToday bool   `json:"streakShownToday"`
}

// =============================================================================
// USAGE DECISION - canUseApp policy result
// =============================================================================

// Reason explains a usage decision, most restrictive first.
type Reason string

const (
	ReasonOK                Reason = "ok"
	ReasonNoBalance         Reason = "no_balance"
	ReasonLimitReached      Reason = "limit_reached"
	ReasonTotalLimitReached Reason = "total_limit_reached"
)

// UsageDecision is the result of the canUseApp policy check.
//
// The priority ordering is deliberate: a blanket daily cap beats a per-app
// cap, which beats balance insufficiency, so the UI always presents the
// most restrictive reason.
type UsageDecision struct {
	CanUse              bool   `json:"canUse"`
	Reason              Reason `json:"reason"`
	RemainingLimit      int    `json:"remainingLimit"`
	AvailableMinutes    int    `json:"availableMinutes"`
	TotalRemainingLimit int    `json:"totalRemainingLimit"`
}

// DefaultTotalDailyLimit is the total daily cap, in minutes, before the
// user configures one.
const DefaultTotalDailyLimit = 60
