package saml

// IndexableEndpoint is implemented by Endpoint and IndexedEndpoint so
// EndpointManager can be generic over either (§9: "Template-based
// EndpointManager... generic over the endpoint type").
type IndexableEndpoint interface {
	GetBinding() string
}

// EndpointManager provides binding-indexed and index-indexed lookup over a
// fixed set of endpoints, plus a memoized default, replacing the template
// EndpointManager of the original implementation (§9).
type EndpointManager[T IndexableEndpoint] struct {
	endpoints []T

	defaultComputed bool
	defaultEndpoint T
	hasDefault      bool
}

// NewEndpointManager wraps a slice of endpoints (order preserved, so
// deterministic first-match lookups hold per §5 Ordering).
func NewEndpointManager[T IndexableEndpoint](endpoints []T) *EndpointManager[T] {
	return &EndpointManager[T]{endpoints: endpoints}
}

// ByBinding returns the first endpoint supporting binding, in slice order.
func (m *EndpointManager[T]) ByBinding(binding string) (T, bool) {
	for _, e := range m.endpoints {
		if e.GetBinding() == binding {
			return e, true
		}
	}
	var zero T
	return zero, false
}

// indexed is implemented by IndexedEndpoint; ByIndex and Default are no-ops
// (always miss) for plain Endpoint managers, since only indexed endpoints
// carry an index/isDefault attribute.
type indexed interface {
	GetIndex() int
	GetIsDefault() bool
}

// ByIndex returns the endpoint with the given index attribute, if any of
// the wrapped endpoints implement the indexed capability.
func (m *EndpointManager[T]) ByIndex(index int) (T, bool) {
	for _, e := range m.endpoints {
		if ix, ok := any(e).(indexed); ok && ix.GetIndex() == index {
			return e, true
		}
	}
	var zero T
	return zero, false
}

// Default returns the endpoint marked isDefault="true", memoized after the
// first call; if none is marked, it falls back to the lowest-index endpoint
// the first time it's computed.
func (m *EndpointManager[T]) Default() (T, bool) {
	if m.defaultComputed {
		return m.defaultEndpoint, m.hasDefault
	}
	m.defaultComputed = true

	var (
		best     T
		bestSeen bool
		bestIdx  int
	)
	for _, e := range m.endpoints {
		ix, ok := any(e).(indexed)
		if !ok {
			continue
		}
		if ix.GetIsDefault() {
			m.defaultEndpoint, m.hasDefault = e, true
			return m.defaultEndpoint, true
		}
		if !bestSeen || ix.GetIndex() < bestIdx {
			best, bestSeen, bestIdx = e, true, ix.GetIndex()
		}
	}
	if bestSeen {
		m.defaultEndpoint, m.hasDefault = best, true
	}
	return m.defaultEndpoint, m.hasDefault
}
