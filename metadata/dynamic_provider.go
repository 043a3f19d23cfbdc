package metadata

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/logger"
)

// entityFetcher is the collaborator DynamicProvider, LocalDynamicProvider,
// and MDQProvider all reduce to: given an entityID, produce the raw
// metadata bytes for it (or an error). The three providers differ only in
// how they turn an entityID into a location to fetch from.
type entityFetcher interface {
	fetch(ctx context.Context, entityID string) ([]byte, error)
}

// dynamicCacheEntry is one cached lookup result: either a resolved entity
// (ok) or a cached failure, both with their own expiration (§4.2 "Dynamic"
// row: "A failure result also caches... to prevent retry storms").
type dynamicCacheEntry struct {
	entity  *saml.EntityDescriptor
	err     error
	expires time.Time
}

// dynamicCache is the shared per-entity TTL cache used by DynamicProvider,
// LocalDynamicProvider, and MDQProvider (§4.2 "Per-entity TTL computed as
// min(validUntil − now, cacheDuration) × refreshDelayFactor, clamped to
// [minCacheDuration, maxCacheDuration]"). When the entity carries neither
// validUntil nor cacheDuration, one hour stands in for the minimum.
type dynamicCache struct {
	mu                 sync.RWMutex
	entries            map[string]dynamicCacheEntry
	RefreshDelayFactor float64
	MinCacheDuration   time.Duration
	MaxCacheDuration   time.Duration
	Filters            Chain
	Log                logger.Interface
	fetcher            entityFetcher
}

func newDynamicCache(f entityFetcher) *dynamicCache {
	return &dynamicCache{entries: make(map[string]dynamicCacheEntry), fetcher: f, MinCacheDuration: time.Minute, MaxCacheDuration: 24 * time.Hour}
}

func (c *dynamicCache) log() logger.Interface {
	if c.Log != nil {
		return c.Log
	}
	return logger.DefaultLogger
}

func (c *dynamicCache) delayFactor() float64 {
	if c.RefreshDelayFactor > 0 {
		return c.RefreshDelayFactor
	}
	return 0.75
}

func (c *dynamicCache) clamp(d time.Duration) time.Duration {
	if d < c.MinCacheDuration {
		return c.MinCacheDuration
	}
	if c.MaxCacheDuration > 0 && d > c.MaxCacheDuration {
		return c.MaxCacheDuration
	}
	return d
}

// get resolves entityID, consulting (and populating) the cache (§8
// "Metadata caching": "a subsequent identical lookup within
// cacheDuration × refreshDelayFactor does not re-fetch").
func (c *dynamicCache) get(ctx context.Context, entityID string) (*saml.EntityDescriptor, error) {
	now := saml.TimeNow()

	c.mu.RLock()
	entry, ok := c.entries[entityID]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.entity, entry.err
	}

	data, err := c.fetcher.fetch(ctx, entityID)
	if err != nil {
		c.store(entityID, nil, err, c.MinCacheDuration)
		return nil, err
	}

	root, err := parseEntityTree(data)
	if err != nil {
		c.store(entityID, nil, err, c.MinCacheDuration)
		return nil, saml.Wrap(saml.KindMetadata, "failed to parse dynamically fetched metadata for "+entityID, err)
	}
	if len(c.Filters) > 0 {
		root, err = c.Filters.Filter(root)
		if err != nil {
			c.store(entityID, nil, err, c.MinCacheDuration)
			return nil, saml.Wrap(saml.KindMetadataFilter, "metadata filter rejected dynamically fetched document", err)
		}
	}

	entity := firstEntity(root, entityID)
	if entity == nil {
		err := saml.Newf(saml.KindMetadata, "dynamically fetched document for %s contained no matching EntityDescriptor", entityID)
		c.store(entityID, nil, err, c.MinCacheDuration)
		return nil, err
	}

	base := time.Hour
	if !entity.ValidUntil.IsZero() {
		base = entity.ValidUntil.Sub(now)
	}
	if entity.CacheDuration > 0 && (entity.ValidUntil.IsZero() || entity.CacheDuration < base) {
		base = entity.CacheDuration
	}
	ttl := c.clamp(time.Duration(float64(base) * c.delayFactor()))
	c.store(entityID, entity, nil, ttl)
	return entity, nil
}

func (c *dynamicCache) store(entityID string, entity *saml.EntityDescriptor, err error, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entityID] = dynamicCacheEntry{entity: entity, err: err, expires: saml.TimeNow().Add(ttl)}
}

func firstEntity(root interface{}, entityID string) *saml.EntityDescriptor {
	switch v := root.(type) {
	case *saml.EntityDescriptor:
		if v.EntityID == entityID {
			return v
		}
	case *saml.EntitiesDescriptor:
		for i := range v.EntityDescriptors {
			if v.EntityDescriptors[i].EntityID == entityID {
				return &v.EntityDescriptors[i]
			}
		}
	}
	return nil
}

// DynamicProvider fetches metadata on demand per entityID, using the
// entityID itself as the fetch URL (§4.2 "Dynamic" row).
type DynamicProvider struct {
	HTTPClient *http.Client
	cache      *dynamicCache
	initOnce   sync.Once
}

func (p *DynamicProvider) init() {
	p.initOnce.Do(func() { p.cache = newDynamicCache(httpFetcher{client: p.httpClient()}) })
}

func (p *DynamicProvider) httpClient() *http.Client {
	if p.HTTPClient != nil {
		return p.HTTPClient
	}
	return http.DefaultClient
}

// SetFilters installs the filter chain run on every freshly fetched
// document before caching.
func (p *DynamicProvider) SetFilters(f Chain) { p.init(); p.cache.Filters = f }

func (p *DynamicProvider) Lock()   {}
func (p *DynamicProvider) Unlock() {}

func (p *DynamicProvider) GetEntityDescriptor(criteria Criteria) (*saml.EntityDescriptor, interface{}, error) {
	p.init()
	if criteria.EntityID == "" {
		return nil, nil, saml.New(saml.KindMetadata, "DynamicProvider requires an entityID criteria")
	}
	e, err := p.cache.get(context.Background(), criteria.EntityID)
	if err != nil {
		return nil, nil, err
	}
	return e, selectRole(e, criteria), nil
}

func (p *DynamicProvider) GetEntitiesDescriptor(name string, requireValid bool) (*saml.EntitiesDescriptor, error) {
	return nil, saml.New(saml.KindMetadata, "DynamicProvider has no notion of named groups")
}

type httpFetcher struct{ client *http.Client }

func (f httpFetcher) fetch(ctx context.Context, entityID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entityID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, saml.Newf(saml.KindMetadata, "dynamic metadata fetch of %s returned status %d", entityID, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
