// Package metadata implements the metadata resolution layer of §4.2:
// looking up entity descriptors by entityID or artifact source, caching
// and refreshing them (static XML, on-demand dynamic, MDQ, chained,
// folder-of-files), filtering them before they're trusted, and exposing
// their credentials to the signature/encryption engines. Concrete provider
// variants are grounded in the teacher's samlsp/fetch_metadata.go parsing
// idiom (the EntityDescriptor-vs-EntitiesDescriptor unwrap) and the
// virtengine edugain package's refresh state machine
// (Load/Refresh/ForceRefresh/doRefresh over a mutex-guarded snapshot).
package metadata

import (
	saml "github.com/insaplace/opensamlcore"
)

// Criteria selects an entity (and optionally a role within it) from a
// Provider (§4.2 "getEntityDescriptor(criteria)"). Exactly one of
// EntityID or ArtifactSource should be set.
type Criteria struct {
	// EntityID is the entityID URI to look up (Unicode or ASCII form;
	// callers are expected to have already normalized IDNA if needed).
	EntityID string

	// ArtifactSource is an artifact's source string (§3 Invariants: the
	// SourceID extension, SHA1(entityID), or an ArtifactResolutionService
	// endpoint location), used for reverse lookup during artifact
	// resolution (§4.3).
	ArtifactSource string

	// Role, when non-empty, narrows the match to an entity that
	// advertises this role QName (one of the saml.Role* constants)
	// supporting Protocol (or, if set, Protocol2 as a fallback) in its
	// ProtocolSupportEnumeration (§4.2).
	Role      string
	Protocol  string
	Protocol2 string

	// ValidOnly, when true, suppresses the "fall back to the most recent
	// expired match" behavior of §4.2 and instead reports a miss.
	ValidOnly bool
}

// Provider is the MetadataProvider contract of §4.2. Implementations are
// readable/writable lockable per §5: callers must hold a read lock (Lock/
// Unlock) for the span of a lookup and of any use of the returned
// *EntityDescriptor, since a background refresh may swap the underlying
// tree out from under an unlocked caller.
type Provider interface {
	// Lock acquires a shared read lock over the provider's current tree.
	Lock()
	// Unlock releases the lock acquired by Lock.
	Unlock()

	// GetEntityDescriptor resolves criteria to an entity and, if
	// criteria.Role is set, the matching role within it (§4.2).
	GetEntityDescriptor(criteria Criteria) (*saml.EntityDescriptor, interface{}, error)

	// GetEntitiesDescriptor looks up a named group (§4.2
	// "getEntitiesDescriptor(name, requireValid)").
	GetEntitiesDescriptor(name string, requireValid bool) (*saml.EntitiesDescriptor, error)
}

// RoleMatcher is implemented by every concrete role type (IDPSSODescriptor,
// SPSSODescriptor, ...) so GetEntityDescriptor's role-matching can stay
// generic: it walks an entity's role slices via reflection-free type
// switches in index.go and calls SupportsProtocol on whatever it finds.
type RoleMatcher interface {
	SupportsProtocol(protocol string) bool
}

// ChangeEvent describes a provider's tree being swapped in after a
// successful refresh. No provider in this module emits one.
type ChangeEvent struct {
	Provider Provider
}

// ChangeListener is the callback shape for a ChangeEvent. No provider in
// this module accepts or notifies one, and nothing subscribes
// credential.Resolver.Invalidate to it.
type ChangeListener func(ChangeEvent)
