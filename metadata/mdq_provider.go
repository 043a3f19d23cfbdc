package metadata

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	saml "github.com/insaplace/opensamlcore"
)

// MDQProvider resolves metadata from a Metadata Query Protocol endpoint on
// demand (§4.2 "MDQ" row): GET {BaseURL}/entities/{url-encoded entityID}.
type MDQProvider struct {
	BaseURL    string
	HTTPClient *http.Client

	cache    *dynamicCache
	initOnce sync.Once
}

func (p *MDQProvider) httpClient() *http.Client {
	if p.HTTPClient != nil {
		return p.HTTPClient
	}
	return http.DefaultClient
}

func (p *MDQProvider) init() {
	p.initOnce.Do(func() {
		p.cache = newDynamicCache(mdqFetcher{baseURL: strings.TrimRight(p.BaseURL, "/"), client: p.httpClient()})
	})
}

func (p *MDQProvider) SetFilters(f Chain) { p.init(); p.cache.Filters = f }

func (p *MDQProvider) Lock()   {}
func (p *MDQProvider) Unlock() {}

func (p *MDQProvider) GetEntityDescriptor(criteria Criteria) (*saml.EntityDescriptor, interface{}, error) {
	p.init()
	if criteria.EntityID == "" {
		return nil, nil, saml.New(saml.KindMetadata, "MDQProvider requires an entityID criteria")
	}
	e, err := p.cache.get(context.Background(), criteria.EntityID)
	if err != nil {
		return nil, nil, err
	}
	return e, selectRole(e, criteria), nil
}

func (p *MDQProvider) GetEntitiesDescriptor(name string, requireValid bool) (*saml.EntitiesDescriptor, error) {
	return nil, saml.New(saml.KindMetadata, "MDQProvider has no notion of named groups")
}

type mdqFetcher struct {
	baseURL string
	client  *http.Client
}

func (f mdqFetcher) fetch(ctx context.Context, entityID string) ([]byte, error) {
	u := f.baseURL + "/entities/" + url.PathEscape(entityID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, saml.Newf(saml.KindMetadata, "MDQ fetch of %s returned status %d", u, resp.StatusCode)
	}
	return httpBody(resp)
}
