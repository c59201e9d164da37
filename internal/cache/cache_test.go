package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	InitRedis(mr.Addr())
	require.NotNil(t, GetClient(), "expected redis client to connect to miniredis")
	t.Cleanup(func() { client = nil })
	return mr
}

func TestSetAndGetJSON(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, SetJSON(ctx, "test:key", payload{Name: "x", Count: 3}, time.Minute))

	var got payload
	found, err := GetJSON(ctx, "test:key", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "x", Count: 3}, got)

	found, err = GetJSON(ctx, "test:missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAside(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *int) func() error {
		return func() error {
			calls++
			*dest = 42
			return nil
		}
	}

	var v int
	require.NoError(t, Aside(ctx, "aside:k", &v, time.Minute, fetch(&v)))
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)

	// Second read is served from the cache.
	var v2 int
	require.NoError(t, Aside(ctx, "aside:k", &v2, time.Minute, fetch(&v2)))
	assert.Equal(t, 42, v2)
	assert.Equal(t, 1, calls)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	boom := errors.New("boom")
	var v int
	err := Aside(ctx, "aside:err", &v, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)

	found, err := GetJSON(ctx, "aside:err", &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAside_DisabledCacheStillFetches(t *testing.T) {
	client = nil

	var v int
	err := Aside(context.Background(), "aside:off", &v, time.Minute, func() error {
		v = 7
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestInvalidateTrendingTags(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, TrendingTagsKey(20), []string{"golang"}, time.Minute))
	require.NoError(t, SetJSON(ctx, TrendingTagsKey(5), []string{"golang"}, time.Minute))
	require.NoError(t, SetJSON(ctx, ProfileKey("alice"), "p", time.Minute))

	InvalidateTrendingTags(ctx)

	assert.False(t, mr.Exists(TrendingTagsKey(20)))
	assert.False(t, mr.Exists(TrendingTagsKey(5)))
	// Unrelated keys survive.
	assert.True(t, mr.Exists(ProfileKey("alice")))
}

func TestInvalidateProfile(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, ProfileKey("alice"), "p", time.Minute))
	InvalidateProfile(ctx, "alice")
	assert.False(t, mr.Exists(ProfileKey("alice")))
}

func TestInitRedis_BadAddrDisablesCache(t *testing.T) {
	InitRedis("foo://localhost:6379")
	assert.Nil(t, GetClient())
}
