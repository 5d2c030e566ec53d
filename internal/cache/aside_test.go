package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedProfile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	loads := 0
	var got cachedProfile
	load := func() error {
		loads++
		got = cachedProfile{ID: 1, Username: "ada"}
		return nil
	}

	require.NoError(t, Aside(ctx, UserKey(1), &got, UserTTL, load))
	assert.Equal(t, "ada", got.Username)
	assert.Equal(t, 1, loads)

	// Second call is served from cache
	got = cachedProfile{}
	require.NoError(t, Aside(ctx, UserKey(1), &got, UserTTL, load))
	assert.Equal(t, "ada", got.Username)
	assert.Equal(t, 1, loads)
}

func TestAside_LoadErrorNotCached(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	var got cachedProfile
	err := Aside(ctx, UserKey(2), &got, UserTTL, func() error {
		return errors.New("db down")
	})
	assert.Error(t, err)

	require.NoError(t, Aside(ctx, UserKey(2), &got, UserTTL, func() error {
		got = cachedProfile{ID: 2, Username: "grace"}
		return nil
	}))
	assert.Equal(t, "grace", got.Username)
}

func TestAside_CorruptEntryFallsThrough(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(UserKey(3), "{not json"))

	var got cachedProfile
	require.NoError(t, Aside(ctx, UserKey(3), &got, UserTTL, func() error {
		got = cachedProfile{ID: 3, Username: "linus"}
		return nil
	}))
	assert.Equal(t, "linus", got.Username)
}

func TestAside_NilClientServesFromSource(t *testing.T) {
	SetClient(nil)

	var got cachedProfile
	require.NoError(t, Aside(context.Background(), UserKey(4), &got, UserTTL, func() error {
		got = cachedProfile{ID: 4, Username: "margaret"}
		return nil
	}))
	assert.Equal(t, "margaret", got.Username)
}

func TestInvalidateCircle(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(CircleKey(9), "x"))
	require.NoError(t, mr.Set(CircleMembersKey(9), "y"))
	require.NoError(t, mr.Set(CircleListKey, "z"))

	InvalidateCircle(ctx, 9)

	assert.False(t, mr.Exists(CircleKey(9)))
	assert.False(t, mr.Exists(CircleMembersKey(9)))
	assert.False(t, mr.Exists(CircleListKey))
}
