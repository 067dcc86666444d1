/*
stats.go - Derived day/week rollups

PURPOSE:
  Read-only aggregation over the earning/spending logs for display. When a
  balance authority is present and the question concerns "today", the
  native daily counters are preferred: they survive app restarts and see
  usage the UI process never witnessed.

TWO WEEK GRANULARITIES (both intentional, not interchangeable):
  - WeekStats:        trailing 7x24h window ending now
  - WeeklyDailyStats: the current Monday-aligned calendar week (Mon-Sun)

FREE-USAGE EXCLUSION:
  "Spent" sums exclude schedule-free records everywhere in this file: free
  minutes count toward limits (engine.go) but were never charged to the
  wallet, so displaying them as spending would overstate cost.

SEE ALSO:
  - engine.go: The logs these functions scan
*/
package wallet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DAY STATS
// =============================================================================

// DayStat is one calendar day's earned/spent rollup.
type DayStat struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Earned  int    `json:"earned"`
	Spent   int    `json:"spent"`
	IsToday bool   `json:"isToday"`
}

// TodayEarned returns minutes earned today: the native counter when an
// authority is present (it sees background earnings), else the log sum.
func (e *Engine) TodayEarned(ctx context.Context) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.authority.Available() {
		if earned, err := e.authority.TotalEarnedToday(ctx); err == nil {
			return earned
		}
		e.log.Warn().Msg("stats: native earned-today read failed, using log sum")
	}
	return e.earnedOnLocked(e.now())
}

// TodaySpent returns minutes spent today, excluding schedule-free usage.
func (e *Engine) TodaySpent(ctx context.Context) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.authority.Available() {
		if spent, err := e.authority.TotalSpentToday(ctx); err == nil {
			return spent
		}
		e.log.Warn().Msg("stats: native spent-today read failed, using log sum")
	}
	return e.spentOnLocked(e.now())
}

// DayStats returns the rollup for one calendar day (YYYY-MM-DD), always
// log-derived. Unknown dates simply sum to zero.
func (e *Engine) DayStats(date string) DayStat {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stat := DayStat{Date: date, IsToday: date == DayKey(e.now())}
	for _, record := range e.earningLog {
		if DayKey(record.Timestamp) == date {
			stat.Earned += record.MinutesEarned
		}
	}
	for _, record := range e.spendingLog {
		if !record.WasScheduleFree && DayKey(record.Timestamp) == date {
			stat.Spent += record.MinutesSpent
		}
	}
	return stat
}

func (e *Engine) earnedOnLocked(day time.Time) int {
	total := 0
	for _, record := range e.earningLog {
		if sameDay(record.Timestamp, day) {
			total += record.MinutesEarned
		}
	}
	return total
}

func (e *Engine) spentOnLocked(day time.Time) int {
	total := 0
	for _, record := range e.spendingLog {
		if !record.WasScheduleFree && sameDay(record.Timestamp, day) {
			total += record.MinutesSpent
		}
	}
	return total
}

// =============================================================================
// ROLLING WEEK
// =============================================================================

// WeekStatsResult sums the trailing 7x24h window ending now. The averages
// are fractional (minutes per day) and kept as decimals for display.
type WeekStatsResult struct {
	EarnedMinutes   int             `json:"earnedMinutes"`
	SpentMinutes    int             `json:"spentMinutes"`
	AvgEarnedPerDay decimal.Decimal `json:"avgEarnedPerDay"`
	AvgSpentPerDay  decimal.Decimal `json:"avgSpentPerDay"`
}

// WeekStats sums the trailing seven days (a rolling 7x24h window, not a
// calendar week; see WeeklyDailyStats for that).
func (e *Engine) WeekStats(ctx context.Context) WeekStatsResult {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cutoff := e.now().Add(-7 * 24 * time.Hour)
	var result WeekStatsResult
	for _, record := range e.earningLog {
		if record.Timestamp.After(cutoff) {
			result.EarnedMinutes += record.MinutesEarned
		}
	}
	for _, record := range e.spendingLog {
		if !record.WasScheduleFree && record.Timestamp.After(cutoff) {
			result.SpentMinutes += record.MinutesSpent
		}
	}

	seven := decimal.NewFromInt(7)
	result.AvgEarnedPerDay = decimal.NewFromInt(int64(result.EarnedMinutes)).DivRound(seven, 1)
	result.AvgSpentPerDay = decimal.NewFromInt(int64(result.SpentMinutes)).DivRound(seven, 1)
	return result
}

// =============================================================================
// CALENDAR WEEK
// =============================================================================

// WeeklyDailyStats returns one entry per day of the current Monday-aligned
// calendar week (Mon-Sun), each tagged IsToday. The today slot prefers the
// native counters when an authority is present; every other slot is
// log-derived.
func (e *Engine) WeeklyDailyStats(ctx context.Context) []DayStat {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := e.now()
	monday := startOfWeek(now)
	stats := make([]DayStat, 0, 7)
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		stat := DayStat{
			Date:    DayKey(day),
			Earned:  e.earnedOnLocked(day),
			Spent:   e.spentOnLocked(day),
			IsToday: sameDay(day, now),
		}
		if stat.IsToday && e.authority.Available() {
			if earned, err := e.authority.TotalEarnedToday(ctx); err == nil {
				stat.Earned = earned
			}
			if spent, err := e.authority.TotalSpentToday(ctx); err == nil {
				stat.Spent = spent
			}
		}
		stats = append(stats, stat)
	}
	return stats
}
