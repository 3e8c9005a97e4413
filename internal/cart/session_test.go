package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/catalog"
)

func testSessions(t *testing.T) (*Sessions, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Sessions{R: client, TTL: time.Hour}, mr
}

func TestSessionsCreateAndLoad(t *testing.T) {
	sessions, _ := testSessions(t)
	ctx := context.Background()

	created, err := sessions.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	loaded, err := sessions.Load(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, loaded.ID)
	require.Zero(t, loaded.Store.Len())
}

func TestSessionsRoundTripPreservesCart(t *testing.T) {
	sessions, _ := testSessions(t)
	ctx := context.Background()

	session, err := sessions.Create(ctx)
	require.NoError(t, err)

	p := catalog.Product{ID: 1, Name: "Kemeja", Price: 150000, Stock: 10}
	v := &catalog.Variant{ID: 10, ProductID: 1, Name: "Merah", PriceDelta: 20000}
	_, err = session.Store.AddItem(p, v, nil, 2)
	require.NoError(t, err)
	session.VoucherCode = "HEMAT10"
	require.NoError(t, sessions.Save(ctx, session))

	loaded, err := sessions.Load(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, "HEMAT10", loaded.VoucherCode)
	require.Equal(t, 1, loaded.Store.Len())

	item, ok := loaded.Store.Item(Key(1, 10, 0))
	require.True(t, ok)
	require.Equal(t, 2, item.Quantity)
	require.Equal(t, int64(170000), item.UnitPrice)
	require.Equal(t, 10, item.StockAtAdd)
}

func TestSessionsLoadUnknownID(t *testing.T) {
	sessions, _ := testSessions(t)
	_, err := sessions.Load(context.Background(), "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = sessions.Load(context.Background(), "")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionsExpiry(t *testing.T) {
	sessions, mr := testSessions(t)
	ctx := context.Background()

	session, err := sessions.Create(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = sessions.Load(ctx, session.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionsLoadRefreshesTTL(t *testing.T) {
	sessions, mr := testSessions(t)
	ctx := context.Background()

	session, err := sessions.Create(ctx)
	require.NoError(t, err)

	// Touch the session just before it would lapse; the TTL slides.
	mr.FastForward(50 * time.Minute)
	_, err = sessions.Load(ctx, session.ID)
	require.NoError(t, err)

	mr.FastForward(50 * time.Minute)
	_, err = sessions.Load(ctx, session.ID)
	require.NoError(t, err)
}

func TestSessionsDelete(t *testing.T) {
	sessions, _ := testSessions(t)
	ctx := context.Background()

	session, err := sessions.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, sessions.Delete(ctx, session.ID))

	_, err = sessions.Load(ctx, session.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	// Deleting again is not an error.
	require.NoError(t, sessions.Delete(ctx, session.ID))
}
