package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/magabrotheeeer/gym-portal/internal/lib/sl"
)

// MetaStore — хранилище метаданных пользователей, которое кешируется.
type MetaStore interface {
	GetAllMeta(ctx context.Context, userID int64) (map[string]string, error)
	SetMeta(ctx context.Context, userID int64, key, value string) error
}

// MetaCache кеширует метаданные пользователя целиком под одним ключом.
// Запись идёт в хранилище, после чего ключ сбрасывается.
// Ошибки Redis не прерывают запрос: чтение уходит в хранилище.
type MetaCache struct {
	next  MetaStore
	cache *Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewMetaCache создаёт MetaCache поверх хранилища next.
func NewMetaCache(next MetaStore, cache *Cache, ttl time.Duration, log *slog.Logger) *MetaCache {
	return &MetaCache{next: next, cache: cache, ttl: ttl, log: log}
}

func metaKey(userID int64) string {
	return "gym:user_meta:" + strconv.FormatInt(userID, 10)
}

// GetAllMeta возвращает метаданные пользователя, по возможности из кеша.
func (m *MetaCache) GetAllMeta(ctx context.Context, userID int64) (map[string]string, error) {
	const op = "cache.GetAllMeta"
	key := metaKey(userID)

	var meta map[string]string
	found, err := m.cache.Get(ctx, key, &meta)
	if err != nil {
		m.log.Warn("meta cache read failed", slog.String("key", key), sl.Err(err))
	}
	if found {
		return meta, nil
	}

	meta, err = m.next.GetAllMeta(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = m.cache.Set(ctx, key, meta, m.ttl); err != nil {
		m.log.Warn("meta cache write failed", slog.String("key", key), sl.Err(err))
	}
	return meta, nil
}

// GetMeta возвращает одно значение метаданных. Отсутствующий ключ даёт пустую строку.
func (m *MetaCache) GetMeta(ctx context.Context, userID int64, key string) (string, error) {
	meta, err := m.GetAllMeta(ctx, userID)
	if err != nil {
		return "", err
	}
	return meta[key], nil
}

// SetMeta пишет значение в хранилище и сбрасывает кеш пользователя.
func (m *MetaCache) SetMeta(ctx context.Context, userID int64, key, value string) error {
	const op = "cache.SetMeta"
	if err := m.next.SetMeta(ctx, userID, key, value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := m.cache.Invalidate(ctx, metaKey(userID)); err != nil {
		m.log.Warn("meta cache invalidate failed", slog.Int64("user_id", userID), sl.Err(err))
	}
	return nil
}
