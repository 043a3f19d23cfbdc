package metadata

import (
	"time"

	saml "github.com/insaplace/opensamlcore"
)

// index is the product of walking a loaded EntitiesDescriptor/
// EntityDescriptor tree (§4.2 "Indexing"): three maps keyed by string,
// built once per successful load+filter pass and then used read-only
// until the next refresh.
type index struct {
	sites  map[string]*saml.EntityDescriptor  // entityID -> entity
	groups map[string]*saml.EntitiesDescriptor // group Name -> group

	// sources maps an artifact source string to the owning entity, per §3
	// Invariants: populated from the SourceID extension, SHA1(entityID),
	// and (for SAML 1) ArtifactResolutionService endpoint locations.
	sources map[string]*saml.EntityDescriptor

	// entities is the flat list of every entity seen, in document order.
	// lookup does not scan it; it reads sites/sources.
	entities []*saml.EntityDescriptor
}

func newIndex() *index {
	return &index{
		sites:   make(map[string]*saml.EntityDescriptor),
		groups:  make(map[string]*saml.EntitiesDescriptor),
		sources: make(map[string]*saml.EntityDescriptor),
	}
}

// buildIndex walks root (an *saml.EntitiesDescriptor or *saml.EntityDescriptor)
// and returns the resulting index, mutating validUntil in place on every
// entity so that EffectiveValidUntil reflects min(self, every enclosing
// group) per §4.2 Indexing / §3 Invariants.
func buildIndex(root interface{}) *index {
	idx := newIndex()
	switch r := root.(type) {
	case *saml.EntitiesDescriptor:
		idx.walkGroup(r, unboundedTime)
	case *saml.EntityDescriptor:
		idx.walkEntity(r, unboundedTime)
	}
	return idx
}

// unboundedTime is the zero value, used as "no constraint yet" while
// descending; time.Time{}.IsZero() == true so min() treats it as +Inf.
var unboundedTime time.Time

func minValid(a, b time.Time) time.Time {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	if a.Before(b) {
		return a
	}
	return b
}

func (idx *index) walkGroup(g *saml.EntitiesDescriptor, inherited time.Time) {
	effective := minValid(inherited, g.ValidUntil)
	if g.Name != nil {
		idx.groups[*g.Name] = g
	}
	for i := range g.EntityDescriptors {
		idx.walkEntity(&g.EntityDescriptors[i], effective)
	}
	for i := range g.EntitiesDescriptors {
		idx.walkGroup(&g.EntitiesDescriptors[i], effective)
	}
}

func (idx *index) walkEntity(e *saml.EntityDescriptor, inherited time.Time) {
	e.ValidUntil = minValid(inherited, e.ValidUntil)

	idx.sites[e.EntityID] = e
	idx.entities = append(idx.entities, e)

	idx.indexSources(e)
}

// indexSources registers every artifact-source key this entity can be
// found under (§3 Invariants / §4.2 Indexing): the SourceID extension
// if present is not modeled as a distinct metadata extension in this
// module (no federations in the retrieved pack emit it outside
// shibboleth-specific metadata), so the two always-applicable sources are
// indexed: SHA1(entityID) (used identically for SAML 1 and SAML 2 per
// spec) and every SAML 1 ArtifactResolutionService location advertised by
// any SSO-capable role.
func (idx *index) indexSources(e *saml.EntityDescriptor) {
	idx.sources[saml.SourceIDHashString(e.EntityID)] = e

	for i := range e.IDPSSODescriptors {
		for _, ars := range e.IDPSSODescriptors[i].ArtifactResolutionServices {
			idx.sources[ars.Location] = e
		}
	}
	for i := range e.SPSSODescriptors {
		for _, ars := range e.SPSSODescriptors[i].ArtifactResolutionServices {
			idx.sources[ars.Location] = e
		}
	}
}

// roleMatchers returns every role on e, restricted to roleName when
// non-empty; it does not filter by protocol. Role QNames follow the
// saml.Role* constants.
func roleMatchers(e *saml.EntityDescriptor, roleName string) []RoleMatcher {
	var out []RoleMatcher
	add := func(name string, rs ...RoleMatcher) {
		if roleName == "" || roleName == name {
			out = append(out, rs...)
		}
	}
	for i := range e.IDPSSODescriptors {
		add(saml.RoleIDPSSO, &e.IDPSSODescriptors[i])
	}
	for i := range e.SPSSODescriptors {
		add(saml.RoleSPSSO, &e.SPSSODescriptors[i])
	}
	for i := range e.AuthnAuthorityDescriptors {
		add(saml.RoleAuthnAuthority, &e.AuthnAuthorityDescriptors[i])
	}
	for i := range e.AttributeAuthorityDescriptors {
		add(saml.RoleAttributeAuthority, &e.AttributeAuthorityDescriptors[i])
	}
	for i := range e.PDPDescriptors {
		add(saml.RolePDP, &e.PDPDescriptors[i])
	}
	return out
}

// selectRole finds the first role on e matching criteria, returning it as
// an opaque interface{} (the concrete *saml.IDPSSODescriptor etc.) so
// callers that need the concrete type can type-assert.
func selectRole(e *saml.EntityDescriptor, criteria Criteria) interface{} {
	if criteria.Role == "" {
		return nil
	}
	check := func(m RoleMatcher) bool {
		if criteria.Protocol == "" {
			return true
		}
		if m.SupportsProtocol(criteria.Protocol) {
			return true
		}
		return criteria.Protocol2 != "" && m.SupportsProtocol(criteria.Protocol2)
	}
	for i := range e.IDPSSODescriptors {
		if criteria.Role == saml.RoleIDPSSO && check(&e.IDPSSODescriptors[i]) {
			return &e.IDPSSODescriptors[i]
		}
	}
	for i := range e.SPSSODescriptors {
		if criteria.Role == saml.RoleSPSSO && check(&e.SPSSODescriptors[i]) {
			return &e.SPSSODescriptors[i]
		}
	}
	for i := range e.AuthnAuthorityDescriptors {
		if criteria.Role == saml.RoleAuthnAuthority && check(&e.AuthnAuthorityDescriptors[i]) {
			return &e.AuthnAuthorityDescriptors[i]
		}
	}
	for i := range e.AttributeAuthorityDescriptors {
		if criteria.Role == saml.RoleAttributeAuthority && check(&e.AttributeAuthorityDescriptors[i]) {
			return &e.AttributeAuthorityDescriptors[i]
		}
	}
	for i := range e.PDPDescriptors {
		if criteria.Role == saml.RolePDP && check(&e.PDPDescriptors[i]) {
			return &e.PDPDescriptors[i]
		}
	}
	return nil
}

// lookup implements the matching rule shared by every concrete provider's
// GetEntityDescriptor. Each entityID or artifact source maps to the last
// entity indexed under it; that entity is returned if still valid, or if
// expired unless criteria.ValidOnly. Earlier descriptors indexed under the
// same key are not consulted.
func (idx *index) lookup(criteria Criteria, now time.Time) (*saml.EntityDescriptor, interface{}, bool) {
	var candidate *saml.EntityDescriptor
	switch {
	case criteria.EntityID != "":
		candidate = idx.sites[criteria.EntityID]
	case criteria.ArtifactSource != "":
		candidate = idx.sources[criteria.ArtifactSource]
	}
	if candidate == nil {
		return nil, nil, false
	}
	if criteria.Role != "" && selectRole(candidate, criteria) == nil {
		return nil, nil, false
	}

	valid := candidate.ValidUntil.IsZero() || now.Before(candidate.ValidUntil)
	if !valid && criteria.ValidOnly {
		return nil, nil, false
	}
	return candidate, selectRole(candidate, criteria), true
}
