package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func withTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	withTestRedis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			fetches++
			dest.ID = 7
			dest.Name = "cached"
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, Aside(ctx, "thing:7", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "cached", first.Name)

	var second cachedThing
	require.NoError(t, Aside(ctx, "thing:7", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read should be served from cache")
	assert.Equal(t, first, second)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	withTestRedis(t)
	ctx := context.Background()

	var dest cachedThing
	wantErr := errors.New("store down")
	err := Aside(ctx, "thing:1", &dest, time.Minute, func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)

	fetched := false
	require.NoError(t, Aside(ctx, "thing:1", &dest, time.Minute, func() error {
		fetched = true
		return nil
	}))
	assert.True(t, fetched, "failed fetch must not leave a cache entry")
}

func TestAside_NoClientRunsFetch(t *testing.T) {
	SetClient(nil)

	fetched := false
	var dest cachedThing
	require.NoError(t, Aside(context.Background(), "thing:2", &dest, time.Minute, func() error {
		fetched = true
		return nil
	}))
	assert.True(t, fetched)
}

func TestInvalidate(t *testing.T) {
	mr := withTestRedis(t)
	ctx := context.Background()

	require.NoError(t, GetClient().Set(ctx, UserKey(3), `{"id":3}`, time.Minute).Err())
	InvalidateUser(ctx, 3)
	assert.False(t, mr.Exists(UserKey(3)))
}
