package schema

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/tracing"
)

// DefaultHeaderMapTTL bounds how long a cached header map is served before
// being rebuilt.
const DefaultHeaderMapTTL = 10 * time.Minute

type cachedHeaderMap struct {
	headerMap map[string]int
	loadedAt  time.Time
}

// Service fronts a Resolver with a header-map cache. Repeated imports of the
// same sheet present an identical header row, so maps are cached by the
// literal header list.
type Service struct {
	resolver *Resolver
	ttl      time.Duration
	cache    sync.Map // cache key -> *cachedHeaderMap
	mu       sync.Mutex
	logger   ectologger.Logger
}

// NewService creates a schema service. ttl <= 0 falls back to
// DefaultHeaderMapTTL.
func NewService(resolver *Resolver, ttl time.Duration, logger ectologger.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultHeaderMapTTL
	}
	return &Service{
		resolver: resolver,
		ttl:      ttl,
		logger:   logger,
	}
}

// Resolver exposes the underlying resolver for single-header lookups.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

func cacheKey(entityType string, rawHeaders []string) string {
	return entityType + "\x1f" + strings.Join(rawHeaders, "\x1f")
}

// HeaderMap returns the canonical header map for a header row, serving from
// cache while the entry is fresh.
func (s *Service) HeaderMap(ctx context.Context, entityType string, rawHeaders []string) map[string]int {
	ctx, span := tracing.StartSpan(ctx, "schema.Service.HeaderMap")
	defer span.End()

	key := cacheKey(entityType, rawHeaders)
	if cached, ok := s.cache.Load(key); ok {
		entry := cached.(*cachedHeaderMap)
		if time.Since(entry.loadedAt) < s.ttl {
			return entry.headerMap
		}
	}

	// Serialize rebuilds so racing callers do not all pay the resolve cost.
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.cache.Load(key); ok {
		entry := cached.(*cachedHeaderMap)
		if time.Since(entry.loadedAt) < s.ttl {
			return entry.headerMap
		}
	}

	headerMap := s.resolver.BuildHeaderMap(ctx, entityType, rawHeaders)
	s.cache.Store(key, &cachedHeaderMap{
		headerMap: headerMap,
		loadedAt:  time.Now(),
	})

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"entity_type":  entityType,
		"header_count": len(rawHeaders),
		"mapped_count": len(headerMap),
	}).Debug("Built header map")

	return headerMap
}

// InvalidateCache removes all cached header maps for an entity type, or every
// entry when entityType is empty.
func (s *Service) InvalidateCache(entityType string) {
	prefix := entityType + "\x1f"
	s.cache.Range(func(key, _ any) bool {
		k := key.(string)
		if entityType == "" || strings.HasPrefix(k, prefix) {
			s.cache.Delete(key)
		}
		return true
	})
}
