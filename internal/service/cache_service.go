package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/domain/repository"
)

// CacheService - кэш в памяти с TTL. Просроченные записи удаляются при чтении и в Purge.
type CacheService[K comparable, V any] struct {
	mu    sync.RWMutex
	cache map[K]cacheEntry[V]
	ttl   time.Duration
	now   func() time.Time
}

type cacheEntry[V any] struct {
	data      V
	expiresAt time.Time
}

func NewCacheService[K comparable, V any](ttl time.Duration) *CacheService[K, V] {
	return &CacheService[K, V]{
		cache: make(map[K]cacheEntry[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (cs *CacheService[K, V]) Get(key K) (V, bool) {
	cs.mu.RLock()
	entry, ok := cs.cache[key]
	cs.mu.RUnlock()

	if !ok || cs.now().After(entry.expiresAt) {
		var zero V
		return zero, false
	}
	return entry.data, true
}

func (cs *CacheService[K, V]) Set(key K, value V) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.cache[key] = cacheEntry[V]{data: value, expiresAt: cs.now().Add(cs.ttl)}
}

func (cs *CacheService[K, V]) Delete(key K) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.cache, key)
}

// Purge удаляет просроченные записи и возвращает их количество.
func (cs *CacheService[K, V]) Purge() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	now := cs.now()
	removed := 0
	for key, entry := range cs.cache {
		if now.After(entry.expiresAt) {
			delete(cs.cache, key)
			removed++
		}
	}
	return removed
}

// GetOrSet возвращает значение из кэша или вычисляет и сохраняет его. Ошибки не кэшируются.
func (cs *CacheService[K, V]) GetOrSet(key K, fn func() (V, error)) (V, error) {
	if value, ok := cs.Get(key); ok {
		return value, nil
	}
	value, err := fn()
	if err != nil {
		return value, err
	}
	cs.Set(key, value)
	return value, nil
}

// CachedSpaces кэширует карточки помещений, которые читаются при каждом уведомлении и выплате.
type CachedSpaces struct {
	next  repository.SpaceRepository
	cache *CacheService[uuid.UUID, entity.Space]
}

func NewCachedSpaces(next repository.SpaceRepository, ttl time.Duration) *CachedSpaces {
	return &CachedSpaces{next: next, cache: NewCacheService[uuid.UUID, entity.Space](ttl)}
}

func (c *CachedSpaces) FindByID(ctx context.Context, id uuid.UUID) (*entity.Space, error) {
	space, err := c.cache.GetOrSet(id, func() (entity.Space, error) {
		s, err := c.next.FindByID(ctx, id)
		if err != nil {
			return entity.Space{}, err
		}
		return *s, nil
	})
	if err != nil {
		return nil, err
	}
	// копия, чтобы вызывающий код не менял запись в кэше
	return &space, nil
}

// Invalidate сбрасывает карточку после изменения помещения.
func (c *CachedSpaces) Invalidate(id uuid.UUID) {
	c.cache.Delete(id)
}

// RunPurge периодически чистит просроченные записи до отмены ctx.
func (c *CachedSpaces) RunPurge(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cache.Purge()
		}
	}
}
