/*
authority.go - Native balance authority strategy

PURPOSE:
  On platforms that support background app-blocking enforcement, an
  out-of-process privileged component owns the authoritative wallet
  balance: it keeps deducting while a blocked app is open even when this
  process is dead. There the engine is a write-through/read-through mirror.
  Everywhere else the engine is the sole owner of the balance.

  BalanceAuthority is the strategy interface for that split. The engine is
  handed one implementation at construction time instead of scattering
  platform conditionals through the operations:

    - a platform adapter bridging to the native side (out of scope here,
      lives with the mobile shell), and
    - LocalAuthority, the no-op used on platforms without background
      enforcement and in tests.

FAILURE MODEL:
  Every authority call is best-effort. When a call fails, the engine logs
  it and falls back to local arithmetic so the user-visible balance still
  moves; ReconcileBalance later adopts the authoritative value. See §7 of
  the engine docs in engine.go.

SEE ALSO:
  - engine.go: Delegation and fallback logic
  - api/scheduler.go: Periodic native counter refresh
*/
package wallet

import "context"

// =============================================================================
// BALANCE AUTHORITY - Platform-native owner of the spendable balance
// =============================================================================

// BalanceAuthority owns AvailableMinutes on platforms with background
// enforcement. All methods are best-effort; the engine treats any error as
// "fall back to local bookkeeping".
type BalanceAuthority interface {
	// Available reports whether a real authority backs this instance.
	// When false, the engine does purely local bookkeeping and every other
	// method is a no-op returning zero values and ErrNoAuthority.
	Available() bool

	// WalletBalance returns the authoritative spendable balance.
	WalletBalance(ctx context.Context) (int, error)

	// SetWalletBalance overwrites the authoritative balance (reset path).
	SetWalletBalance(ctx context.Context, minutes int) error

	// AddToWalletBalance credits minutes and returns the new balance.
	AddToWalletBalance(ctx context.Context, minutes int) (int, error)

	// DeductFromWalletBalance debits minutes and returns the new balance.
	// The authority permits negative results (urgent spend).
	DeductFromWalletBalance(ctx context.Context, minutes int) (int, error)

	// AddToEarnedToday feeds the native earned-today counter.
	AddToEarnedToday(ctx context.Context, minutes int) error

	// TotalEarnedToday / TotalSpentToday are the native daily counters,
	// maintained by the privileged process across app restarts.
	TotalEarnedToday(ctx context.Context) (int, error)
	TotalSpentToday(ctx context.Context) (int, error)

	// SetTotalDailyLimit mirrors the configured total cap to the enforcer.
	SetTotalDailyLimit(ctx context.Context, minutes int) error

	// AppUsageToday returns the natively-tracked per-app/per-website
	// minutes for the current day, keyed like DailyUsage.AppUsage.
	AppUsageToday(ctx context.Context) (map[string]int, error)
}

// =============================================================================
// LOCAL AUTHORITY - No-op strategy for platforms without enforcement
// =============================================================================

// LocalAuthority is the BalanceAuthority for platforms where no privileged
// native process exists. The engine detects Available() == false and keeps
// all balance math local.
type LocalAuthority struct{}

var _ BalanceAuthority = LocalAuthority{}

func (LocalAuthority) Available() bool { return false }

func (LocalAuthority) WalletBalance(context.Context) (int, error) { return 0, ErrNoAuthority }

func (LocalAuthority) SetWalletBalance(context.Context, int) error { return ErrNoAuthority }

func (LocalAuthority) AddToWalletBalance(context.Context, int) (int, error) {
	return 0, ErrNoAuthority
}

func (LocalAuthority) DeductFromWalletBalance(context.Context, int) (int, error) {
	return 0, ErrNoAuthority
}

func (LocalAuthority) AddToEarnedToday(context.Context, int) error { return ErrNoAuthority }

func (LocalAuthority) TotalEarnedToday(context.Context) (int, error) { return 0, ErrNoAuthority }

func (LocalAuthority) TotalSpentToday(context.Context) (int, error) { return 0, ErrNoAuthority }

func (LocalAuthority) SetTotalDailyLimit(context.Context, int) error { return ErrNoAuthority }

func (LocalAuthority) AppUsageToday(context.Context) (map[string]int, error) {
	return nil, ErrNoAuthority
}
