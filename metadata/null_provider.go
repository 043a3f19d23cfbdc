package metadata

import saml "github.com/insaplace/opensamlcore"

// NullProvider synthesizes an entity from a fixed Template plus the
// queried entityID on every lookup, never refreshing (§4.2 "Null" row).
// Useful in tests and for federations that mint ad-hoc IdP/SP entities
// from a single shared key pair.
type NullProvider struct {
	// Template is cloned (shallow) and given EntityID = the criteria's
	// EntityID on every GetEntityDescriptor call.
	Template saml.EntityDescriptor
}

func (p *NullProvider) Lock()   {}
func (p *NullProvider) Unlock() {}

func (p *NullProvider) GetEntityDescriptor(criteria Criteria) (*saml.EntityDescriptor, interface{}, error) {
	if criteria.EntityID == "" {
		return nil, nil, saml.New(saml.KindMetadata, "NullProvider requires an entityID criteria")
	}
	e := p.Template
	e.EntityID = criteria.EntityID
	return &e, selectRole(&e, criteria), nil
}

func (p *NullProvider) GetEntitiesDescriptor(name string, requireValid bool) (*saml.EntitiesDescriptor, error) {
	return nil, saml.New(saml.KindMetadata, "NullProvider has no notion of named groups")
}
