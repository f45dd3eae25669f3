package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMetaStore struct {
	meta  map[int64]map[string]string
	reads int
	err   error
}

func (f *fakeMetaStore) GetAllMeta(_ context.Context, userID int64) (map[string]string, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string)
	for k, v := range f.meta[userID] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeMetaStore) SetMeta(_ context.Context, userID int64, key, value string) error {
	if f.err != nil {
		return f.err
	}
	if f.meta[userID] == nil {
		f.meta[userID] = make(map[string]string)
	}
	f.meta[userID][key] = value
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMetaCache_ReadThrough(t *testing.T) {
	c, _ := setupTestCache(t)
	store := &fakeMetaStore{meta: map[int64]map[string]string{
		7: {"membership_duration": "20240301", "full_name": "Abe Suni"},
	}}
	mc := NewMetaCache(store, c, time.Minute, discardLogger())
	ctx := context.Background()

	v, err := mc.GetMeta(ctx, 7, "membership_duration")
	require.NoError(t, err)
	assert.Equal(t, "20240301", v)

	v, err = mc.GetMeta(ctx, 7, "full_name")
	require.NoError(t, err)
	assert.Equal(t, "Abe Suni", v)
	assert.Equal(t, 1, store.reads, "second read must be served from redis")

	v, err = mc.GetMeta(ctx, 7, "branch")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestMetaCache_SetInvalidates(t *testing.T) {
	c, _ := setupTestCache(t)
	store := &fakeMetaStore{meta: map[int64]map[string]string{7: {"full_name": "Abe"}}}
	mc := NewMetaCache(store, c, time.Minute, discardLogger())
	ctx := context.Background()

	_, err := mc.GetAllMeta(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, mc.SetMeta(ctx, 7, "full_name", "Abe Suni"))

	v, err := mc.GetMeta(ctx, 7, "full_name")
	require.NoError(t, err)
	assert.Equal(t, "Abe Suni", v)
	assert.Equal(t, 2, store.reads)
}

func TestMetaCache_RedisDownFallsBackToStore(t *testing.T) {
	c, mr := setupTestCache(t)
	store := &fakeMetaStore{meta: map[int64]map[string]string{3: {"branch": "north"}}}
	mc := NewMetaCache(store, c, time.Minute, discardLogger())

	mr.Close()

	v, err := mc.GetMeta(context.Background(), 3, "branch")
	require.NoError(t, err)
	assert.Equal(t, "north", v)
}

func TestMetaCache_StoreError(t *testing.T) {
	c, _ := setupTestCache(t)
	store := &fakeMetaStore{meta: map[int64]map[string]string{}, err: errors.New("db is down")}
	mc := NewMetaCache(store, c, time.Minute, discardLogger())
	ctx := context.Background()

	_, err := mc.GetMeta(ctx, 1, "full_name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.GetAllMeta")

	err = mc.SetMeta(ctx, 1, "full_name", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.SetMeta")
}
