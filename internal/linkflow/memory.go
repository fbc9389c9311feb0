package linkflow

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore is a single-process Store backed by a TTL cache. Suitable when
// one instance serves both legs of the redirect flow.
type MemoryStore struct {
	cache *ttlcache.Cache[string, *PendingLink]
}

// NewMemoryStore creates a MemoryStore. Pass 0 for the default TTL. Stop must
// be called on shutdown to end the eviction goroutine.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *PendingLink](ttl),
		ttlcache.WithDisableTouchOnHit[string, *PendingLink](),
	)
	go cache.Start()

	return &MemoryStore{cache: cache}
}

func (s *MemoryStore) Put(_ context.Context, flowID string, link *PendingLink) error {
	s.cache.Set(flowID, link, ttlcache.DefaultTTL)
	return nil
}

func (s *MemoryStore) Take(_ context.Context, flowID string) (*PendingLink, error) {
	item := s.cache.Get(flowID)
	if item == nil {
		return nil, ErrFlowNotFound
	}
	s.cache.Delete(flowID)
	return item.Value(), nil
}

// Stop ends the cache's background eviction goroutine.
func (s *MemoryStore) Stop() {
	s.cache.Stop()
}

var _ Store = (*MemoryStore)(nil)
