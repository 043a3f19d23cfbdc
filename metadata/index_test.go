package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	saml "github.com/insaplace/opensamlcore"
)

func TestBuildIndexPropagatesGroupValidUntil(t *testing.T) {
	groupValid := time.Date(1984, 8, 26, 0, 0, 0, 0, time.UTC)
	entityValid := groupValid.Add(48 * time.Hour)
	name := "federation-a"
	root := &saml.EntitiesDescriptor{
		Name:       &name,
		ValidUntil: groupValid,
		EntityDescriptors: []saml.EntityDescriptor{
			{EntityID: "https://idp.example.org", ValidUntil: entityValid},
		},
	}
	idx := buildIndex(root)
	e, _, ok := idx.lookup(Criteria{EntityID: "https://idp.example.org"}, groupValid.Add(-time.Hour))
	require.True(t, ok)
	require.Equal(t, groupValid, e.ValidUntil)
}

func TestBuildIndexUnboundedWhenNeitherSet(t *testing.T) {
	root := &saml.EntityDescriptor{EntityID: "https://idp.example.org"}
	idx := buildIndex(root)
	e, _, ok := idx.lookup(Criteria{EntityID: "https://idp.example.org"}, time.Now())
	require.True(t, ok)
	require.True(t, e.ValidUntil.IsZero())
}

func TestLookupRejectsExpiredWhenValidOnly(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	root := &saml.EntityDescriptor{EntityID: "https://idp.example.org", ValidUntil: past}
	idx := buildIndex(root)
	_, _, ok := idx.lookup(Criteria{EntityID: "https://idp.example.org", ValidOnly: true}, time.Now())
	require.False(t, ok)
}

func TestLookupAllowsExpiredWithoutValidOnly(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	root := &saml.EntityDescriptor{EntityID: "https://idp.example.org", ValidUntil: past}
	idx := buildIndex(root)
	e, _, ok := idx.lookup(Criteria{EntityID: "https://idp.example.org"}, time.Now())
	require.True(t, ok)
	require.Equal(t, "https://idp.example.org", e.EntityID)
}

func TestLookupByArtifactSource(t *testing.T) {
	root := &saml.EntityDescriptor{EntityID: "https://idp.example.org"}
	idx := buildIndex(root)
	sourceKey := saml.SourceIDHashString("https://idp.example.org")
	e, _, ok := idx.lookup(Criteria{ArtifactSource: sourceKey}, time.Now())
	require.True(t, ok)
	require.Equal(t, "https://idp.example.org", e.EntityID)
}

func TestLookupFiltersByRoleAndProtocol(t *testing.T) {
	root := &saml.EntityDescriptor{
		EntityID: "https://idp.example.org",
		IDPSSODescriptors: []saml.IDPSSODescriptor{{
			SSODescriptor: saml.SSODescriptor{RoleDescriptor: saml.RoleDescriptor{ProtocolSupportEnumeration: saml.SAML20ProtocolNamespace}},
		}},
	}
	idx := buildIndex(root)

	_, role, ok := idx.lookup(Criteria{EntityID: "https://idp.example.org", Role: saml.RoleIDPSSO, Protocol: saml.SAML20ProtocolNamespace}, time.Now())
	require.True(t, ok)
	require.NotNil(t, role)

	_, _, ok = idx.lookup(Criteria{EntityID: "https://idp.example.org", Role: saml.RoleIDPSSO, Protocol: saml.SAML11ProtocolNamespace}, time.Now())
	require.False(t, ok)
}
