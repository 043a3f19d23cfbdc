package metadata

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	saml "github.com/insaplace/opensamlcore"
)

// LocalDynamicProvider resolves metadata for an entityID by hashing it to
// a filename under Dir, on demand (§4.2 "LocalDynamic" row). The hashing
// scheme reuses the artifact-source string of §3: the base64 SHA-1 of
// entityID (saml.SourceIDHashString), passed through url.QueryEscape,
// plus a ".xml" suffix, so a directory of per-entity files
// can be populated out of band by whatever syncs this federation's
// membership.
type LocalDynamicProvider struct {
	Dir string

	cache    *dynamicCache
	initOnce sync.Once
}

func (p *LocalDynamicProvider) init() {
	p.initOnce.Do(func() { p.cache = newDynamicCache(localFetcher{dir: p.Dir}) })
}

func (p *LocalDynamicProvider) SetFilters(f Chain) { p.init(); p.cache.Filters = f }

func (p *LocalDynamicProvider) Lock()   {}
func (p *LocalDynamicProvider) Unlock() {}

func (p *LocalDynamicProvider) GetEntityDescriptor(criteria Criteria) (*saml.EntityDescriptor, interface{}, error) {
	p.init()
	if criteria.EntityID == "" {
		return nil, nil, saml.New(saml.KindMetadata, "LocalDynamicProvider requires an entityID criteria")
	}
	e, err := p.cache.get(context.Background(), criteria.EntityID)
	if err != nil {
		return nil, nil, err
	}
	return e, selectRole(e, criteria), nil
}

func (p *LocalDynamicProvider) GetEntitiesDescriptor(name string, requireValid bool) (*saml.EntitiesDescriptor, error) {
	return nil, saml.New(saml.KindMetadata, "LocalDynamicProvider has no notion of named groups")
}

type localFetcher struct{ dir string }

func (f localFetcher) fetch(ctx context.Context, entityID string) ([]byte, error) {
	name := saml.SourceIDHashString(entityID)
	// base64 can contain '/'; filenames use URL-safe percent-escaping of the
	// raw hash string instead of re-encoding, keeping one file per entity.
	name = url.QueryEscape(name) + ".xml"
	return os.ReadFile(filepath.Join(f.dir, name))
}
