/*
store.go - Persistence interface for wallet snapshots

PURPOSE:
  Defines the interface between the engine and whatever embedded storage
  the platform offers. Snapshots are JSON strings under well-known keys;
  the engine rehydrates them on load and rewrites them after mutations.

CONTRACT:
  - Get(key) returns the stored string and whether it was present.
  - Set(key, value) overwrites unconditionally.
  - No transactions are assumed. The engine tolerates partially-written
    multi-key state: every snapshot is self-describing and a stale one is
    corrected on the next load or rollover check.

SECURE VALUES:
  The total daily limit lives in a separate secure value store keyed by
  name (on device this is the platform keychain/keystore; the app treats
  the limit as user-tamperable policy, not preference). SecureStore models
  that second surface.

IMPLEMENTATIONS:
  - wallet/store/memory.go: In-memory, for tests and local dev
  - store/sqlite/sqlite.go: Durable SQLite-backed store

SEE ALSO:
  - engine.go: The only writer of these keys
*/
package wallet

import "context"

// =============================================================================
// STORE - Key-value JSON snapshot persistence
// =============================================================================

// Store persists JSON-serialized snapshots under string keys.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set overwrites the value for key.
	Set(ctx context.Context, key, value string) error
}

// SecureStore persists individual secure values keyed by name.
// Kept separate from Store because on-device these are different surfaces
// with different durability and access characteristics.
type SecureStore interface {
	GetSecure(ctx context.Context, name string) (value string, ok bool, err error)
	SetSecure(ctx context.Context, name, value string) error
}

// =============================================================================
// KEYS
// =============================================================================

const (
	KeyWallet             = "earned_time_wallet"
	KeyEarningLog         = "earned_time_earning_log"
	KeySpendingLog        = "earned_time_spending_log"
	KeyDailyUsage         = "earned_time_daily_usage"
	KeySyncedUsage        = "earned_time_last_synced_usage"
	KeySyncedWebsiteUsage = "earned_time_last_synced_website_usage"
	KeyStreak             = "earned_time_streak"

	// SecureKeyTotalDailyLimit names the limit entry in the SecureStore.
	SecureKeyTotalDailyLimit = "total_daily_limit"
)
