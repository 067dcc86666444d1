/*
streak.go - Consecutive qualifying-day tracking

PURPOSE:
  A qualifying day is any local calendar day with at least one EarnTime or
  RecordActivity call. The streak is the run length of consecutive
  qualifying days ending at the most recent one.

TRANSITIONS (driven only by qualifying calls):
  lastEarningDate == today      -> no change (already counted)
  lastEarningDate == yesterday  -> currentStreak + 1
  anything older, or never      -> currentStreak = 1
  after any change              -> longestStreak = max(longest, current)

LAZY EXPIRY:
  A missed day is not noticed until the next load or rollover check. At
  that point the displayed currentStreak is zeroed; the next qualifying
  call then starts a fresh streak at 1. No correction exists for device
  clock skew.

SHOWN-TODAY GATE:
  StreakShownToday lets the UI celebrate the day's first qualifying event
  exactly once. The flag clears with the same stale-date check that resets
  DailyUsage, keeping a single rollover mechanism for all day-scoped state.

SEE ALSO:
  - engine.go: rolloverLocked, the caller of expireStreakLocked
*/
package wallet

import "context"

// =============================================================================
// QUALIFYING-DAY TRANSITIONS
// =============================================================================

// RecordActivity registers a qualifying event that grants no time reward
// (e.g. a photo-verified task). Returns true when this was the day's first
// qualifying call, so the caller can trigger a streak celebration once.
func (e *Engine) RecordActivity(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rolloverLocked(ctx)
	return e.applyQualifyingDayLocked(ctx)
}

// applyQualifyingDayLocked runs the streak transition for "now" and
// persists the streak. Returns true on the day's first qualifying call.
func (e *Engine) applyQualifyingDayLocked(ctx context.Context) bool {
	now := e.now()
	today := DayKey(now)
	if e.streak.LastEarningDate == today {
		return false
	}

	yesterday := DayKey(now.AddDate(0, 0, -1))
	if e.streak.LastEarningDate == yesterday {
		e.streak.CurrentStreak++
	} else {
		// Never earned, or a gap of two or more days.
		e.streak.CurrentStreak = 1
	}
	if e.streak.CurrentStreak > e.streak.LongestStreak {
		e.streak.LongestStreak = e.streak.CurrentStreak
	}
	e.streak.LastEarningDate = today

	e.persist(ctx, KeyStreak, e.streak)
	return true
}

// expireStreakLocked zeroes a streak whose last qualifying day is more
// than one day old. The displayed value reads 0 immediately; the next
// qualifying call restarts at 1.
func (e *Engine) expireStreakLocked(ctx context.Context) {
	if e.streak.LastEarningDate == "" || e.streak.CurrentStreak == 0 {
		return
	}
	last, err := ParseDayKey(e.streak.LastEarningDate)
	if err != nil {
		e.log.Warn().Str("lastEarningDate", e.streak.LastEarningDate).
			Msg("streak: unparsable last earning date, expiring")
		e.streak.CurrentStreak = 0
		e.persist(ctx, KeyStreak, e.streak)
		return
	}
	if daysBetween(last, e.now()) > 1 {
		e.streak.CurrentStreak = 0
		e.persist(ctx, KeyStreak, e.streak)
		e.log.Debug().Msg("streak expired")
	}
}

// =============================================================================
// SHOWN-TODAY GATE
// =============================================================================

// IsFirstEarningToday reports whether no qualifying call has happened yet
// today and the celebration has not been shown.
func (e *Engine) IsFirstEarningToday() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.streak.LastEarningDate != DayKey(e.now()) && !e.streak.StreakShownToday
}

// MarkStreakShown records that the streak celebration was displayed.
func (e *Engine) MarkStreakShown(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.streak.StreakShownToday = true
	e.persist(ctx, KeyStreak, e.streak)
}
