package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screenward/timewallet/store/sqlite"
	"github.com/screenward/timewallet/wallet"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSnapshots_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, ok, err := st.Get(ctx, wallet.KeyWallet)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Set(ctx, wallet.KeyWallet, `{"totalEarned":20}`))

	value, ok, err := st.Get(ctx, wallet.KeyWallet)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"totalEarned":20}`, value)
}

func TestSnapshots_LastWriterWins(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, wallet.KeyDailyUsage, `{"date":"2025-03-10"}`))
	require.NoError(t, st.Set(ctx, wallet.KeyDailyUsage, `{"date":"2025-03-11"}`))

	value, ok, err := st.Get(ctx, wallet.KeyDailyUsage)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"date":"2025-03-11"}`, value)
}

func TestSecureValues_SeparateFromSnapshots(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetSecure(ctx, wallet.SecureKeyTotalDailyLimit, "90"))

	value, ok, err := st.GetSecure(ctx, wallet.SecureKeyTotalDailyLimit)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "90", value)

	// The snapshot surface must not see secure values.
	_, ok, err = st.Get(ctx, wallet.SecureKeyTotalDailyLimit)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_WorksOverSQLite(t *testing.T) {
	// The engine round-trips its whole state through the SQLite store.
	st := newTestStore(t)
	ctx := context.Background()

	e := wallet.NewEngine(st, st)
	require.NoError(t, e.Load(ctx))
	e.EarnTime(ctx, wallet.EarnExercise, 20, "run")
	require.True(t, e.SpendTime(ctx, "com.example.app", "Example", 5))

	reloaded := wallet.NewEngine(st, st)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, 15, reloaded.Wallet().AvailableMinutes)
	assert.Equal(t, 20, reloaded.Wallet().TotalEarned)
	assert.Len(t, reloaded.EarningHistory(), 1)
	assert.Len(t, reloaded.SpendingHistory(), 1)
}
