package wallet_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screenward/timewallet/wallet"
)

// =============================================================================
// TODAY
// =============================================================================

func TestTodayStats_LogDerived(t *testing.T) {
	// GIVEN: Records from yesterday and today
	// THEN: Today sums only today's, and spent excludes schedule-free
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()

	e.EarnTime(ctx, wallet.EarnCustom, 10, "yesterday's task")
	clock.AdvanceDays(1)

	e.EarnTime(ctx, wallet.EarnExercise, 25, "run")
	require.True(t, e.SpendTime(ctx, "com.example.app", "Example", 8))
	e.RecordFreeUsage(ctx, "com.example.app", "Example", 6)

	assert.Equal(t, 25, e.TodayEarned(ctx))
	assert.Equal(t, 8, e.TodaySpent(ctx))
	assert.Equal(t, 14, e.TotalUsageToday()) // free usage counts here
}

func TestTodayStats_PrefersNativeCounters(t *testing.T) {
	// With an authority present, the native counters win: they saw
	// background spending this process never witnessed.
	auth := &fakeAuthority{earnedToday: 50, spentToday: 22}
	e, _, _ := newTestEngine(t, wallet.WithAuthority(auth))
	ctx := context.Background()

	assert.Equal(t, 50, e.TodayEarned(ctx))
	assert.Equal(t, 22, e.TodaySpent(ctx))
}

func TestTodayStats_NativeFailureFallsBackToLogs(t *testing.T) {
	auth := &fakeAuthority{failAll: true}
	e, _, _ := newTestEngine(t, wallet.WithAuthority(auth))
	ctx := context.Background()
	e.EarnTime(ctx, wallet.EarnCustom, 9, "task")

	assert.Equal(t, 9, e.TodayEarned(ctx))
	assert.Equal(t, 0, e.TodaySpent(ctx))
}

// =============================================================================
// SPECIFIC DAY
// =============================================================================

func TestDayStats_SpecificCalendarDay(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()

	firstDay := wallet.DayKey(clock.Now())
	e.EarnTime(ctx, wallet.EarnCustom, 12, "task")
	require.True(t, e.SpendTime(ctx, "com.example.app", "Example", 4))
	e.RecordFreeUsage(ctx, "com.example.app", "Example", 3)

	clock.AdvanceDays(1)
	e.EarnTime(ctx, wallet.EarnCustom, 7, "other task")

	stat := e.DayStats(firstDay)
	assert.Equal(t, firstDay, stat.Date)
	assert.Equal(t, 12, stat.Earned)
	assert.Equal(t, 4, stat.Spent) // free usage excluded
	assert.False(t, stat.IsToday)

	today := e.DayStats(wallet.DayKey(clock.Now()))
	assert.True(t, today.IsToday)
	assert.Equal(t, 7, today.Earned)
}

// =============================================================================
// ROLLING WEEK
// =============================================================================

func TestWeekStats_RollingWindow(t *testing.T) {
	// GIVEN: A record 8 days old and records inside the window
	// THEN: Only the trailing 7x24h counts
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()

	e.EarnTime(ctx, wallet.EarnCustom, 100, "ancient task")
	clock.AdvanceDays(8)

	e.EarnTime(ctx, wallet.EarnCustom, 14, "recent task")
	require.True(t, e.SpendTime(ctx, "com.example.app", "Example", 7))
	e.RecordFreeUsage(ctx, "com.example.app", "Example", 5)

	stats := e.WeekStats(ctx)
	assert.Equal(t, 14, stats.EarnedMinutes)
	assert.Equal(t, 7, stats.SpentMinutes) // free usage excluded
	assert.True(t, stats.AvgEarnedPerDay.Equal(decimal.NewFromInt(2)))
	assert.True(t, stats.AvgSpentPerDay.Equal(decimal.NewFromInt(1)))
}

// =============================================================================
// CALENDAR WEEK
// =============================================================================

func TestWeeklyDailyStats_MondayAligned(t *testing.T) {
	// The test clock starts on a Tuesday; the week must run Mon-Sun with
	// exactly one IsToday slot.
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()
	e.EarnTime(ctx, wallet.EarnCustom, 10, "task")

	stats := e.WeeklyDailyStats(ctx)
	require.Len(t, stats, 7)

	monday, err := wallet.ParseDayKey(stats[0].Date)
	require.NoError(t, err)
	assert.Equal(t, time.Monday, monday.Weekday())

	todayCount := 0
	for i, stat := range stats {
		if stat.IsToday {
			todayCount++
			assert.Equal(t, wallet.DayKey(clock.Now()), stat.Date)
			assert.Equal(t, 10, stat.Earned)
			assert.Equal(t, 1, i) // Tuesday slot
		}
	}
	assert.Equal(t, 1, todayCount)
}

func TestWeeklyDailyStats_EarlierDaysLogDerived(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()

	e.EarnTime(ctx, wallet.EarnCustom, 10, "tuesday task")
	clock.AdvanceDays(2) // Thursday

	stats := e.WeeklyDailyStats(ctx)
	require.Len(t, stats, 7)
	assert.Equal(t, 10, stats[1].Earned) // Tuesday, from the log
	assert.True(t, stats[3].IsToday)     // Thursday
}

func TestWeeklyDailyStats_TodaySlotUsesNativeCounters(t *testing.T) {
	auth := &fakeAuthority{earnedToday: 31, spentToday: 4}
	e, _, _ := newTestEngine(t, wallet.WithAuthority(auth))

	stats := e.WeeklyDailyStats(context.Background())
	for _, stat := range stats {
		if stat.IsToday {
			assert.Equal(t, 31, stat.Earned)
			assert.Equal(t, 4, stat.Spent)
		} else {
			assert.Zero(t, stat.Earned)
		}
	}
}
