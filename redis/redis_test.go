package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestCachedApprovedTrusts_NoClientUsesLoader(t *testing.T) {
	calls := 0
	ids, err := CachedApprovedTrusts(context.Background(), nil, 7, func(context.Context) ([]uint, error) {
		calls++
		return []uint{1, 2}, nil
	})
	require.NoError(t, err)
	require.Equal(t, []uint{1, 2}, ids)
	require.Equal(t, 1, calls)

	InvalidateApprovedTrusts(context.Background(), nil, 7)
}

func TestCachedApprovedTrusts_UnreachableRedisFallsBack(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	ids, err := CachedApprovedTrusts(context.Background(), client, 7, func(context.Context) ([]uint, error) {
		return nil, nil
	})
	require.NoError(t, err)
	require.Empty(t, ids)

	loadErr := errors.New("db down")
	_, err = CachedApprovedTrusts(context.Background(), client, 7, func(context.Context) ([]uint, error) {
		return nil, loadErr
	})
	require.ErrorIs(t, err, loadErr)
}

func TestApprovedTrustsKey(t *testing.T) {
	require.Equal(t, "nhs:agency:42:approved-trusts", approvedTrustsKey(42))
}
