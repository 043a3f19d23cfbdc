package metadata

import (
	"sync"

	saml "github.com/insaplace/opensamlcore"
)

// Precedence controls which child's match wins when more than one child
// provider resolves the same criteria (§4.2 Chaining).
type Precedence int

const (
	// PrecedenceFirst returns the first child's match (§8 scenario 6).
	PrecedenceFirst Precedence = iota
	// PrecedenceLast returns the last child's match, i.e. later children
	// override earlier ones.
	PrecedenceLast
)

// ChainingProvider is an ordered list of child providers (§4.2 Chaining).
// Its own Lock()/Unlock() guard no state of the ChainingProvider itself:
// Lock locks every child and Unlock unlocks every child, without recording
// anything. LockGuard/UnlockGuard instead record, in a caller-held Guard,
// which children were locked so that UnlockGuard releases exactly those.
type ChainingProvider struct {
	Children   []Provider
	Precedence Precedence

	mu sync.Mutex
}

// Guard records which child providers a single ChainingProvider.Lock()
// call locked, and which provider produced the role used for the most
// recent credential resolution (§5 ChainingMetadataProvider, §9).
type Guard struct {
	locked         []Provider
	resolvedFrom   Provider
}

// NewChaining constructs a ChainingProvider over children, evaluated in
// slice order.
func NewChaining(precedence Precedence, children ...Provider) *ChainingProvider {
	return &ChainingProvider{Children: children, Precedence: precedence}
}

// LockGuard substitutes for true thread-local storage: Go has no
// public goroutine-id API, so each call site is expected to hold its own
// *Guard value rather than rely on ambient state. LockGuard is the
// primary entry point; Lock/Unlock below satisfy the Provider interface
// for callers that only need the aggregate behavior and don't care about
// per-child lock bookkeeping.
func (c *ChainingProvider) LockGuard() *Guard {
	g := &Guard{}
	for _, child := range c.Children {
		child.Lock()
		g.locked = append(g.locked, child)
	}
	return g
}

// UnlockGuard releases exactly the child locks g recorded (§9 "the
// guard's drop releases exactly those").
func (g *Guard) UnlockGuard() {
	for _, child := range g.locked {
		child.Unlock()
	}
	g.locked = nil
}

// ResolvedFrom reports which child provider most recently produced a role
// via GetEntityDescriptor under this guard, so credential resolution can
// dispatch back to the originating child (§5).
func (g *Guard) ResolvedFrom() Provider { return g.resolvedFrom }

// Lock/Unlock implement Provider by locking/unlocking every child; callers
// that need the fine-grained per-call Guard should use LockGuard instead.
func (c *ChainingProvider) Lock() {
	for _, child := range c.Children {
		child.Lock()
	}
}

func (c *ChainingProvider) Unlock() {
	for _, child := range c.Children {
		child.Unlock()
	}
}

// GetEntityDescriptor implements Provider per §4.2 Chaining: "First-match
// or last-wins semantics" depending on Precedence.
func (c *ChainingProvider) GetEntityDescriptor(criteria Criteria) (*saml.EntityDescriptor, interface{}, error) {
	e, role, _, err := c.getEntityDescriptor(criteria, nil)
	return e, role, err
}

// GetEntityDescriptorGuarded is GetEntityDescriptor plus bookkeeping: it
// records on g which child provider produced the returned role, so
// credential resolution can dispatch back to the originating child
// (§5 ChainingMetadataProvider, §9).
func (c *ChainingProvider) GetEntityDescriptorGuarded(criteria Criteria, g *Guard) (*saml.EntityDescriptor, interface{}, error) {
	e, role, origin, err := c.getEntityDescriptor(criteria, g)
	if err == nil && g != nil {
		g.resolvedFrom = origin
	}
	return e, role, err
}

func (c *ChainingProvider) getEntityDescriptor(criteria Criteria, g *Guard) (*saml.EntityDescriptor, interface{}, Provider, error) {
	var (
		lastEntity *saml.EntityDescriptor
		lastRole   interface{}
		lastOrigin Provider
		found      bool
	)
	for _, child := range c.Children {
		e, role, err := child.GetEntityDescriptor(criteria)
		if err != nil {
			continue
		}
		if e == nil {
			continue
		}
		if c.Precedence == PrecedenceFirst {
			return e, role, child, nil
		}
		lastEntity, lastRole, lastOrigin, found = e, role, child, true
	}
	if found {
		return lastEntity, lastRole, lastOrigin, nil
	}
	return nil, nil, nil, saml.Newf(saml.KindMetadata, "no child provider resolved entity for criteria %+v", criteria)
}

func (c *ChainingProvider) GetEntitiesDescriptor(name string, requireValid bool) (*saml.EntitiesDescriptor, error) {
	var last *saml.EntitiesDescriptor
	for _, child := range c.Children {
		g, err := child.GetEntitiesDescriptor(name, requireValid)
		if err != nil || g == nil {
			continue
		}
		if c.Precedence == PrecedenceFirst {
			return g, nil
		}
		last = g
	}
	if last != nil {
		return last, nil
	}
	return nil, saml.Newf(saml.KindMetadata, "no child provider has a group named %q", name)
}

// AddChild appends a provider to the chain.
func (c *ChainingProvider) AddChild(p Provider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Children = append(c.Children, p)
}
