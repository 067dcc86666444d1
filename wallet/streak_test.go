package wallet_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screenward/timewallet/wallet"
)

// =============================================================================
// QUALIFYING-DAY TRANSITIONS
// =============================================================================

func TestStreak_FirstQualifyingDay(t *testing.T) {
	e, _, _ := newTestEngine(t)

	first := e.RecordActivity(context.Background())

	require.True(t, first)
	s := e.Streak()
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 1, s.LongestStreak)
	assert.Equal(t, wallet.DayKey(newTestClock().Now()), s.LastEarningDate)
}

func TestStreak_ConsecutiveDaysIncrement(t *testing.T) {
	// GIVEN: lastEarningDate == yesterday with streak N
	// WHEN: Earning today
	// THEN: currentStreak == N+1, longestStreak keeps the max
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()

	for day := 0; day < 3; day++ {
		e.EarnTime(ctx, wallet.EarnCustom, 5, "daily task")
		clock.AdvanceDays(1)
	}
	clock.AdvanceDays(-1) // back to the last earning day

	s := e.Streak()
	assert.Equal(t, 3, s.CurrentStreak)
	assert.Equal(t, 3, s.LongestStreak)
}

func TestStreak_GapResetsToOne(t *testing.T) {
	// GIVEN: A 2-day gap since the last qualifying day
	// WHEN: The next qualifying call arrives
	// THEN: The streak restarts at 1; longest is preserved
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()

	e.EarnTime(ctx, wallet.EarnCustom, 5, "day one")
	clock.AdvanceDays(1)
	e.EarnTime(ctx, wallet.EarnCustom, 5, "day two")
	clock.AdvanceDays(3)
	e.EarnTime(ctx, wallet.EarnCustom, 5, "after gap")

	s := e.Streak()
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 2, s.LongestStreak)
}

func TestStreak_SameDayIdempotent(t *testing.T) {
	// Two qualifying calls on the same calendar day count once, but the
	// wallet and log still update normally on the second earn.
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	e.EarnTime(ctx, wallet.EarnCustom, 5, "first")
	e.EarnTime(ctx, wallet.EarnCustom, 5, "second")

	assert.Equal(t, 1, e.Streak().CurrentStreak)
	assert.Equal(t, 10, e.Wallet().AvailableMinutes)
	assert.Len(t, e.EarningHistory(), 2)
}

func TestRecordActivity_FirstOfDayOnlyOnce(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()

	assert.True(t, e.RecordActivity(ctx))
	assert.False(t, e.RecordActivity(ctx))
	// Balance is untouched by activity-only qualifying calls.
	assert.Equal(t, 0, e.Wallet().AvailableMinutes)

	clock.AdvanceDays(1)
	assert.True(t, e.RecordActivity(ctx))
	assert.Equal(t, 2, e.Streak().CurrentStreak)
}

// =============================================================================
// LAZY EXPIRY
// =============================================================================

func TestStreak_LazyExpiryOnLoad(t *testing.T) {
	// GIVEN: A persisted streak whose last qualifying day is 3 days old
	// WHEN: The app loads
	// THEN: The displayed streak already reads 0
	e, clock, mem := newTestEngine(t)
	ctx := context.Background()
	e.EarnTime(ctx, wallet.EarnCustom, 5, "task")
	require.Equal(t, 1, e.Streak().CurrentStreak)

	clock.AdvanceDays(3)
	reloaded := wallet.NewEngine(mem, mem, wallet.WithClock(clock.Now))
	require.NoError(t, reloaded.Load(ctx))

	s := reloaded.Streak()
	assert.Equal(t, 0, s.CurrentStreak)
	assert.Equal(t, 1, s.LongestStreak)

	// The next qualifying call starts fresh at 1.
	reloaded.EarnTime(ctx, wallet.EarnCustom, 5, "task")
	assert.Equal(t, 1, reloaded.Streak().CurrentStreak)
}

func TestStreak_YesterdaySurvivesLoad(t *testing.T) {
	// A 1-day gap is not an expiry: yesterday's streak is still continuable.
	e, clock, mem := newTestEngine(t)
	ctx := context.Background()
	e.EarnTime(ctx, wallet.EarnCustom, 5, "task")

	clock.AdvanceDays(1)
	reloaded := wallet.NewEngine(mem, mem, wallet.WithClock(clock.Now))
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, 1, reloaded.Streak().CurrentStreak)

	reloaded.EarnTime(ctx, wallet.EarnCustom, 5, "task")
	assert.Equal(t, 2, reloaded.Streak().CurrentStreak)
}

// =============================================================================
// SHOWN-TODAY GATE
// =============================================================================

func TestStreakShown_OneShotGate(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	assert.True(t, e.IsFirstEarningToday())

	e.MarkStreakShown(ctx)
	assert.False(t, e.IsFirstEarningToday())
	assert.True(t, e.Streak().StreakShownToday)
}

func TestStreakShown_AfterEarningNotFirst(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.EarnTime(context.Background(), wallet.EarnCustom, 5, "task")
	assert.False(t, e.IsFirstEarningToday())
}

func TestStreakShown_ResetsOnRollover(t *testing.T) {
	// The flag clears with the same stale-date check that resets DailyUsage.
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()
	e.MarkStreakShown(ctx)
	require.False(t, e.IsFirstEarningToday())

	clock.AdvanceDays(1)
	e.CheckDayRollover(ctx)

	assert.False(t, e.Streak().StreakShownToday)
	assert.True(t, e.IsFirstEarningToday())
}
