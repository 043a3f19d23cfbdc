package saml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEndpointManagerByBindingFirstMatchWins(t *testing.T) {
	m := NewEndpointManager([]Endpoint{
		{Binding: "redirect", Location: "https://idp.example.org/sso-redirect"},
		{Binding: "post", Location: "https://idp.example.org/sso-post"},
		{Binding: "post", Location: "https://idp.example.org/sso-post-2"},
	})
	e, ok := m.ByBinding("post")
	require.True(t, ok)
	require.Equal(t, "https://idp.example.org/sso-post", e.Location)

	_, ok = m.ByBinding("soap")
	require.False(t, ok)
}

func TestEndpointManagerByIndexMissesOnPlainEndpoint(t *testing.T) {
	m := NewEndpointManager([]Endpoint{{Binding: "post"}})
	_, ok := m.ByIndex(0)
	require.False(t, ok)
}

func TestEndpointManagerByIndexFindsIndexedEndpoint(t *testing.T) {
	m := NewEndpointManager([]IndexedEndpoint{
		{Binding: "post", Index: 1},
		{Binding: "post", Index: 2},
	})
	e, ok := m.ByIndex(2)
	require.True(t, ok)
	require.Equal(t, 2, e.Index)
}

func trueVal() *bool { b := true; return &b }

func TestEndpointManagerDefaultPrefersExplicitFlag(t *testing.T) {
	m := NewEndpointManager([]IndexedEndpoint{
		{Binding: "post", Index: 0},
		{Binding: "post", Index: 1, IsDefault: trueVal()},
	})
	e, ok := m.Default()
	require.True(t, ok)
	require.Equal(t, 1, e.Index)
}

func TestEndpointManagerDefaultFallsBackToLowestIndex(t *testing.T) {
	m := NewEndpointManager([]IndexedEndpoint{
		{Binding: "post", Index: 3},
		{Binding: "post", Index: 1},
	})
	e, ok := m.Default()
	require.True(t, ok)
	require.Equal(t, 1, e.Index)
}

func TestEndpointManagerDefaultMemoizesAfterFirstCall(t *testing.T) {
	endpoints := []IndexedEndpoint{{Binding: "post", Index: 1}}
	m := NewEndpointManager(endpoints)

	first, ok := m.Default()
	require.True(t, ok)

	m.endpoints[0].Index = 99
	second, ok := m.Default()
	require.True(t, ok)
	require.Equal(t, first.Index, second.Index)
}

func TestEndpointManagerDefaultMissesWhenEmpty(t *testing.T) {
	m := NewEndpointManager[IndexedEndpoint](nil)
	_, ok := m.Default()
	require.False(t, ok)
}
