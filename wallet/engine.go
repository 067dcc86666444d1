/*
engine.go - The earned-time ledger engine

PURPOSE:
  Engine owns the wallet aggregate and its satellite logs, and implements
  every operation the UI binds to: earn, spend, urgent spend, free-usage
  recording, the canUseApp policy check, daily limits, native-authority
  sync, and day-rollover housekeeping.

STATE OWNERSHIP:
  All mutable state lives in memory behind one mutex and is written through
  to the Store after every mutation. In-memory state is always internally
  consistent; durability can lag (a failed write is logged, never blocks
  the operation). On load, persisted snapshots rebuild the in-memory view.

AUTHORITY DELEGATION:
  When a BalanceAuthority is Available(), it owns AvailableMinutes:
  - earn delegates the credit and adopts the returned balance
  - spend/urgent delegate the debit and adopt the returned balance
  - sync and load pull the authoritative value over the local mirror
  A failed authority call falls back to local arithmetic so the visible
  balance still moves; drift is corrected by ReconcileBalance, which the
  poller runs on every native refresh tick.

DAY ROLLOVER:
  There is no guaranteed background wake across platforms, so rollover is
  detected lazily: an eager check on load plus a periodic check while the
  process runs. The check only resets stale day-scoped state (usage map,
  streak-shown flag, lazy streak expiry) and is idempotent, so it can
  interleave with user-triggered mutations without losing updates.

SEE ALSO:
  - streak.go: Qualifying-day transitions
  - stats.go: Derived day/week rollups
  - authority.go: The delegation strategy
*/
package wallet

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine is the wallet/ledger/streak engine. Construct one per process
// with NewEngine, call Load once, then share the instance; all methods are
// safe for concurrent use.
type Engine struct {
	mu sync.RWMutex

	store     Store
	secure    SecureStore
	authority BalanceAuthority
	log       zerolog.Logger
	now       func() time.Time

	wallet          Wallet
	earningLog      []EarningRecord // newest first
	spendingLog     []SpendingRecord
	todayUsage      DailyUsage
	streak          StreakData
	totalDailyLimit int

	// Mirrors of the native daily counters, refreshed by the poller.
	nativeEarnedToday int
	nativeSpentToday  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithAuthority installs the platform's balance authority strategy.
// Default is LocalAuthority (purely local bookkeeping).
func WithAuthority(a BalanceAuthority) Option {
	return func(e *Engine) { e.authority = a }
}

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock overrides the time source. Tests use this to cross day
// boundaries deterministically.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine over the given stores. Call Load before use.
func NewEngine(store Store, secure SecureStore, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		secure:          secure,
		authority:       LocalAuthority{},
		log:             zerolog.Nop(),
		now:             time.Now,
		totalDailyLimit: DefaultTotalDailyLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.todayUsage = newDailyUsage(DayKey(e.now()))
	return e
}

// =============================================================================
// LOAD / RELOAD
// =============================================================================

// Load rehydrates all state from the store, applies day-rollover and
// streak expiry, and reconciles the balance with the authority when one is
// present. Corrupt or missing snapshots fall back to zero values.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.wallet = Wallet{}
	e.loadJSON(ctx, KeyWallet, &e.wallet)

	e.earningLog = nil
	e.loadJSON(ctx, KeyEarningLog, &e.earningLog)
	e.spendingLog = nil
	e.loadJSON(ctx, KeySpendingLog, &e.spendingLog)

	e.todayUsage = newDailyUsage(DayKey(e.now()))
	e.loadJSON(ctx, KeyDailyUsage, &e.todayUsage)
	if e.todayUsage.AppUsage == nil {
		e.todayUsage.AppUsage = make(map[string]int)
	}

	e.streak = StreakData{}
	e.loadJSON(ctx, KeyStreak, &e.streak)

	e.totalDailyLimit = DefaultTotalDailyLimit
	if raw, ok, err := e.secure.GetSecure(ctx, SecureKeyTotalDailyLimit); err != nil {
		e.log.Warn().Err(err).Msg("load: secure store read failed, using default limit")
	} else if ok {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			e.totalDailyLimit = v
		}
	}

	e.rolloverLocked(ctx)
	e.reconcileLocked(ctx, "load")
	return nil
}

// Reload is Load for callers that already ran it once (app resume).
func (e *Engine) Reload(ctx context.Context) error { return e.Load(ctx) }

// =============================================================================
// EARN
// =============================================================================

// EarnTime credits minutes earned through a verified activity. It appends
// an EarningRecord, bumps TotalEarned, credits the balance (through the
// authority when present), advances the streak, and persists.
//
// Minutes are caller-validated as positive; no range errors are raised.
func (e *Engine) EarnTime(ctx context.Context, typ EarningType, minutes int, details string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rolloverLocked(ctx)

	now := e.now()
	record := EarningRecord{
		ID:            newRecordID(now),
		Type:          typ,
		MinutesEarned: minutes,
		Details:       details,
		Timestamp:     now,
	}
	e.earningLog = capRecords(append([]EarningRecord{record}, e.earningLog...))

	e.wallet.TotalEarned += minutes
	e.creditLocked(ctx, minutes)
	e.wallet.LastUpdated = now

	if e.authority.Available() {
		if err := e.authority.AddToEarnedToday(ctx, minutes); err != nil {
			e.log.Warn().Err(err).Msg("earn: native earned-today counter update failed")
		}
	}

	e.applyQualifyingDayLocked(ctx)

	e.persist(ctx, KeyWallet, e.wallet)
	e.persist(ctx, KeyEarningLog, e.earningLog)
	e.log.Debug().Str("type", string(typ)).Int("minutes", minutes).
		Int("available", e.wallet.AvailableMinutes).Msg("earned time")
}

// creditLocked adds minutes to the balance, through the authority when one
// is present. Authority failure falls back to local arithmetic.
func (e *Engine) creditLocked(ctx context.Context, minutes int) {
	if e.authority.Available() {
		if newBalance, err := e.authority.AddToWalletBalance(ctx, minutes); err == nil {
			e.wallet.AvailableMinutes = newBalance
			return
		} else {
			e.log.Warn().Err(err).Int("minutes", minutes).
				Msg("authority credit failed, applying locally")
		}
	}
	e.wallet.AvailableMinutes += minutes
}

// debitLocked removes minutes from the balance, through the authority when
// one is present. Negative results are permitted (urgent spend).
func (e *Engine) debitLocked(ctx context.Context, minutes int) {
	if e.authority.Available() {
		if newBalance, err := e.authority.DeductFromWalletBalance(ctx, minutes); err == nil {
			e.wallet.AvailableMinutes = newBalance
			return
		} else {
			e.log.Warn().Err(err).Int("minutes", minutes).
				Msg("authority debit failed, applying locally")
		}
	}
	e.wallet.AvailableMinutes -= minutes
}

// =============================================================================
// SPEND
// =============================================================================

// SpendTime debits minutes for usage of the given app. Returns false, with
// no mutation, when the balance is insufficient; that boolean is the whole
// error contract (an empty wallet is an everyday outcome, not a failure).
func (e *Engine) SpendTime(ctx context.Context, packageName, appName string, minutes int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rolloverLocked(ctx)

	if e.balanceLocked(ctx) < minutes {
		e.log.Debug().Str("package", packageName).Int("minutes", minutes).
			Int("available", e.wallet.AvailableMinutes).Msg("spend rejected: insufficient balance")
		return false
	}

	e.appendSpendLocked(ctx, packageName, appName, minutes, false)
	e.debitLocked(ctx, minutes)
	e.wallet.LastUpdated = e.now()

	e.persist(ctx, KeyWallet, e.wallet)
	e.persist(ctx, KeyDailyUsage, e.todayUsage)
	return true
}

// UrgentSpend is the unconditional spend used for emergency access. It
// always succeeds and may drive the balance negative.
func (e *Engine) UrgentSpend(ctx context.Context, packageName, appName string, minutes int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rolloverLocked(ctx)

	e.appendSpendLocked(ctx, packageName, appName, minutes, false)
	e.debitLocked(ctx, minutes)
	e.wallet.LastUpdated = e.now()

	e.persist(ctx, KeyWallet, e.wallet)
	e.persist(ctx, KeyDailyUsage, e.todayUsage)
	e.log.Info().Str("package", packageName).Int("minutes", minutes).
		Int("available", e.wallet.AvailableMinutes).Msg("urgent spend")
}

// RecordFreeUsage logs usage that happened inside a scheduled free window.
// It counts toward the per-app and total daily caps but never touches the
// balance: free minutes are exempt from the wallet, not from the limits.
func (e *Engine) RecordFreeUsage(ctx context.Context, packageName, appName string, minutes int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rolloverLocked(ctx)

	e.appendSpendLocked(ctx, packageName, appName, minutes, true)
	e.persist(ctx, KeyDailyUsage, e.todayUsage)
}

// appendSpendLocked records one spending entry and charges the daily
// usage bucket. Balance handling is the caller's business.
func (e *Engine) appendSpendLocked(ctx context.Context, packageName, appName string, minutes int, scheduleFree bool) {
	now := e.now()
	record := SpendingRecord{
		ID:              newRecordID(now),
		PackageName:     packageName,
		AppName:         appName,
		MinutesSpent:    minutes,
		WasScheduleFree: scheduleFree,
		Timestamp:       now,
	}
	e.spendingLog = capRecords(append([]SpendingRecord{record}, e.spendingLog...))
	e.todayUsage.AppUsage[packageName] += minutes
	e.persist(ctx, KeySpendingLog, e.spendingLog)
}

// balanceLocked reads the authoritative balance for a sufficiency check,
// falling back to the local mirror when the authority call fails. Read-only:
// adopting the value into the mirror is left to the mutation and reconcile
// paths, which persist what they change.
func (e *Engine) balanceLocked(ctx context.Context) int {
	if e.authority.Available() {
		balance, err := e.authority.WalletBalance(ctx)
		if err == nil {
			return balance
		}
		e.log.Warn().Err(err).Msg("authority balance read failed, using local mirror")
	}
	return e.wallet.AvailableMinutes
}

// =============================================================================
// USAGE POLICY - canUseApp and limit reads
// =============================================================================

// CanUseApp decides whether the given app may be used right now. Pure: no
// mutation, no I/O. Priority order is total cap, then per-app cap, then
// balance, so the caller always gets the most restrictive reason.
func (e *Engine) CanUseApp(packageName string, dailyLimitMinutes int) UsageDecision {
	e.mu.RLock()
	defer e.mu.RUnlock()

	totalRemaining := clampMin0(e.totalDailyLimit - e.totalUsageLocked())
	perAppRemaining := clampMin0(dailyLimitMinutes - e.todayUsage.AppUsage[packageName])

	decision := UsageDecision{
		RemainingLimit:      perAppRemaining,
		AvailableMinutes:    e.wallet.AvailableMinutes,
		TotalRemainingLimit: totalRemaining,
	}
	switch {
	case totalRemaining <= 0:
		decision.Reason = ReasonTotalLimitReached
	case perAppRemaining <= 0:
		decision.Reason = ReasonLimitReached
	case e.wallet.AvailableMinutes <= 0:
		decision.Reason = ReasonNoBalance
	default:
		decision.CanUse = true
		decision.Reason = ReasonOK
	}
	return decision
}

// RemainingLimit returns how many minutes remain under an app's own daily
// limit. Usage can exceed the limit (free-window minutes still count), so
// the result is clamped at zero rather than going negative.
func (e *Engine) RemainingLimit(packageName string, dailyLimitMinutes int) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return clampMin0(dailyLimitMinutes - e.todayUsage.AppUsage[packageName])
}

// TotalUsageToday returns the minutes consumed today across all apps.
func (e *Engine) TotalUsageToday() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totalUsageLocked()
}

// TotalRemainingLimit returns what remains of the total daily cap.
func (e *Engine) TotalRemainingLimit() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return clampMin0(e.totalDailyLimit - e.totalUsageLocked())
}

func (e *Engine) totalUsageLocked() int {
	total := 0
	for _, minutes := range e.todayUsage.AppUsage {
		total += minutes
	}
	return total
}

func clampMin0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// =============================================================================
// ADMINISTRATION
// =============================================================================

// ResetWallet is the administrative override used to recover from detected
// inconsistency: both counters are forced to minutes, the synced-usage
// caches are cleared, and the value is pushed to the authority.
func (e *Engine) ResetWallet(ctx context.Context, minutes int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.wallet = Wallet{
		TotalEarned:      minutes,
		AvailableMinutes: minutes,
		LastUpdated:      e.now(),
	}
	if e.authority.Available() {
		if err := e.authority.SetWalletBalance(ctx, minutes); err != nil {
			e.log.Warn().Err(err).Msg("reset: authority push failed")
		}
	}
	e.persist(ctx, KeyWallet, e.wallet)
	e.persist(ctx, KeySyncedUsage, map[string]int{})
	e.persist(ctx, KeySyncedWebsiteUsage, map[string]int{})
	e.log.Info().Int("minutes", minutes).Msg("wallet reset")
}

// SetTotalDailyLimit persists the total cap and mirrors it to the
// authority's enforcer.
func (e *Engine) SetTotalDailyLimit(ctx context.Context, minutes int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.totalDailyLimit = minutes
	if err := e.secure.SetSecure(ctx, SecureKeyTotalDailyLimit, strconv.Itoa(minutes)); err != nil {
		e.log.Warn().Err(err).Msg("limit: secure store write failed")
	}
	if e.authority.Available() {
		if err := e.authority.SetTotalDailyLimit(ctx, minutes); err != nil {
			e.log.Warn().Err(err).Msg("limit: authority mirror failed")
		}
	}
}

// SeedTotalDailyLimit installs a configured total cap when no value has
// been persisted yet. A limit previously set through SetTotalDailyLimit
// always wins over configuration.
func (e *Engine) SeedTotalDailyLimit(ctx context.Context, minutes int) error {
	_, ok, err := e.secure.GetSecure(ctx, SecureKeyTotalDailyLimit)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	e.SetTotalDailyLimit(ctx, minutes)
	return nil
}

// =============================================================================
// AUTHORITY SYNC - Pull-only mirroring, no local arithmetic
// =============================================================================
// Background usage monitoring only runs inside the privileged native
// process. These operations overwrite the local mirrors with whatever the
// authority currently tracks; on platforms without an authority they are
// no-ops returning zero, and log-derived stats carry the display instead.

// SyncNativeAppUsage pulls natively-tracked app usage (non-website keys)
// over the local mirror and adopts the authoritative balance. Returns the
// total synced minutes.
func (e *Engine) SyncNativeAppUsage(ctx context.Context) (int, error) {
	return e.syncUsage(ctx, false, true)
}

// SyncWebsiteUsage is SyncNativeAppUsage for website keys.
func (e *Engine) SyncWebsiteUsage(ctx context.Context) (int, error) {
	return e.syncUsage(ctx, true, false)
}

// SyncUsage pulls both app and website usage.
func (e *Engine) SyncUsage(ctx context.Context) (int, error) {
	return e.syncUsage(ctx, true, true)
}

func (e *Engine) syncUsage(ctx context.Context, websites, apps bool) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.authority.Available() {
		return 0, nil
	}
	e.rolloverLocked(ctx)

	native, err := e.authority.AppUsageToday(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("sync: native usage read failed")
		return 0, err
	}

	// Replace, not merge: a key the native layer stopped tracking must not
	// survive locally with a stale value.
	for key := range e.todayUsage.AppUsage {
		isWebsite := isWebsiteKey(key)
		if (isWebsite && websites) || (!isWebsite && apps) {
			delete(e.todayUsage.AppUsage, key)
		}
	}

	synced := make(map[string]int)
	total := 0
	for key, minutes := range native {
		isWebsite := isWebsiteKey(key)
		if (isWebsite && !websites) || (!isWebsite && !apps) {
			continue
		}
		e.todayUsage.AppUsage[key] = minutes
		synced[key] = minutes
		total += minutes
	}

	e.reconcileLocked(ctx, "sync")

	e.persist(ctx, KeyDailyUsage, e.todayUsage)
	e.persist(ctx, KeyWallet, e.wallet)
	if websites {
		e.persist(ctx, KeySyncedWebsiteUsage, filterKeys(synced, true))
	}
	if apps {
		e.persist(ctx, KeySyncedUsage, filterKeys(synced, false))
	}
	return total, nil
}

// ReconcileBalance diffs the local balance mirror against the authority
// and adopts the authoritative value. Run by the poller so drift from a
// failed delegation is bounded by the refresh interval rather than
// lingering until the next unrelated sync.
func (e *Engine) ReconcileBalance(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.reconcileLocked(ctx, "poll") {
		e.persist(ctx, KeyWallet, e.wallet)
	}
}

// reconcileLocked returns true when the local mirror changed.
func (e *Engine) reconcileLocked(ctx context.Context, origin string) bool {
	if !e.authority.Available() {
		return false
	}
	balance, err := e.authority.WalletBalance(ctx)
	if err != nil {
		e.log.Warn().Err(err).Str("origin", origin).Msg("reconcile: authority read failed")
		return false
	}
	if drift := balance - e.wallet.AvailableMinutes; drift != 0 {
		e.log.Info().Int("drift", drift).Str("origin", origin).
			Msg("reconciled balance with authority")
	}
	changed := balance != e.wallet.AvailableMinutes
	e.wallet.AvailableMinutes = balance
	return changed
}

// RefreshNativeCounters re-reads the native earned/spent-today counters
// into the display mirrors.
func (e *Engine) RefreshNativeCounters(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.authority.Available() {
		return
	}
	if earned, err := e.authority.TotalEarnedToday(ctx); err == nil {
		e.nativeEarnedToday = earned
	}
	if spent, err := e.authority.TotalSpentToday(ctx); err == nil {
		e.nativeSpentToday = spent
	}
}

// =============================================================================
// DAY ROLLOVER
// =============================================================================

// CheckDayRollover resets stale day-scoped state. Idempotent; safe to call
// from the poller while user-triggered mutations are in flight, because it
// only resets-if-stale and never touches the balance.
func (e *Engine) CheckDayRollover(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rolloverLocked(ctx)
}

func (e *Engine) rolloverLocked(ctx context.Context) {
	today := DayKey(e.now())
	if e.todayUsage.Date != today {
		e.todayUsage = newDailyUsage(today)
		e.streak.StreakShownToday = false
		e.persist(ctx, KeyDailyUsage, e.todayUsage)
		e.persist(ctx, KeyStreak, e.streak)
		e.log.Debug().Str("date", today).Msg("daily usage rolled over")
	}
	e.expireStreakLocked(ctx)
}

// =============================================================================
// PERSISTENCE HELPERS
// =============================================================================
// A failed write leaves in-memory state ahead of durable state. That is
// logged and accepted: this is a motivational tool, and availability of
// the operation beats strict durability. The next successful write of the
// same key heals it.

func (e *Engine) persist(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		e.log.Error().Err(err).Str("key", key).Msg("persist: marshal failed")
		return
	}
	if err := e.store.Set(ctx, key, string(data)); err != nil {
		e.log.Error().Err(err).Str("key", key).Msg("persist: store write failed")
	}
}

func (e *Engine) loadJSON(ctx context.Context, key string, v any) bool {
	raw, ok, err := e.store.Get(ctx, key)
	if err != nil {
		e.log.Warn().Err(err).Str("key", key).Msg("load: store read failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		e.log.Warn().Err(err).Str("key", key).Msg("load: corrupt snapshot, starting fresh")
		return false
	}
	return true
}

// =============================================================================
// READ ACCESSORS - Display binding
// =============================================================================

// Wallet returns a copy of the wallet aggregate.
func (e *Engine) Wallet() Wallet {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.wallet
}

// EarningHistory returns the earning log, newest first.
func (e *Engine) EarningHistory() []EarningRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]EarningRecord, len(e.earningLog))
	copy(out, e.earningLog)
	return out
}

// SpendingHistory returns the spending log, newest first.
func (e *Engine) SpendingHistory() []SpendingRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]SpendingRecord, len(e.spendingLog))
	copy(out, e.spendingLog)
	return out
}

// TodayUsage returns a copy of today's per-app usage.
func (e *Engine) TodayUsage() DailyUsage {
	e.mu.RLock()
	defer e.mu.RUnlock()
	usage := newDailyUsage(e.todayUsage.Date)
	for k, v := range e.todayUsage.AppUsage {
		usage.AppUsage[k] = v
	}
	return usage
}

// Streak returns a copy of the streak state.
func (e *Engine) Streak() StreakData {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.streak
}

// TotalDailyLimit returns the configured total daily cap in minutes.
func (e *Engine) TotalDailyLimit() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totalDailyLimit
}

// NativeEarnedToday returns the last-refreshed native earned-today counter.
func (e *Engine) NativeEarnedToday() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nativeEarnedToday
}

// NativeSpentToday returns the last-refreshed native spent-today counter.
func (e *Engine) NativeSpentToday() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nativeSpentToday
}

// =============================================================================
// SMALL HELPERS
// =============================================================================

func isWebsiteKey(key string) bool {
	return strings.HasPrefix(key, WebsitePrefix)
}

func filterKeys(usage map[string]int, websites bool) map[string]int {
	out := make(map[string]int)
	for k, v := range usage {
		if isWebsiteKey(k) == websites {
			out[k] = v
		}
	}
	return out
}
