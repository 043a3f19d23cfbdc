package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"

	saml "github.com/insaplace/opensamlcore"
)

func TestNameMatcherMatchesEntityID(t *testing.T) {
	m := NameMatcher{Names: map[string]bool{"https://idp.example.org": true}}
	require.True(t, m.Matches(&saml.EntityDescriptor{EntityID: "https://idp.example.org"}, nil))
	require.False(t, m.Matches(&saml.EntityDescriptor{EntityID: "https://other.example.org"}, nil))
}

func TestNameMatcherMatchesEnclosingGroup(t *testing.T) {
	m := NameMatcher{Names: map[string]bool{"federation-a": true}}
	require.True(t, m.Matches(&saml.EntityDescriptor{EntityID: "https://idp.example.org"}, []string{"federation-a"}))
}

func entityWithAttribute(name, format, value string) *saml.EntityDescriptor {
	return &saml.EntityDescriptor{
		EntityID: "https://idp.example.org",
		Extensions: &saml.Extensions{
			EntityAttributes: &saml.EntityAttributes{
				Attributes: []saml.Attribute{{
					Name:            name,
					NameFormat:      format,
					AttributeValues: []saml.AttributeValue{{Value: value}},
				}},
			},
		},
	}
}

func TestEntityAttributesMatcherRequiresEveryValue(t *testing.T) {
	m := EntityAttributesMatcher{Criteria: []AttributeCriterion{{
		Name:   "http://macedir.org/entity-category",
		Values: []string{"http://refeds.org/category/research-and-scholarship"},
	}}}
	e := entityWithAttribute("http://macedir.org/entity-category", "", "http://refeds.org/category/research-and-scholarship")
	require.True(t, m.Matches(e, nil))
}

func TestEntityAttributesMatcherRejectsMissingValue(t *testing.T) {
	m := EntityAttributesMatcher{Criteria: []AttributeCriterion{{
		Name:   "http://macedir.org/entity-category",
		Values: []string{"http://refeds.org/category/research-and-scholarship"},
	}}}
	e := entityWithAttribute("http://macedir.org/entity-category", "", "something-else")
	require.False(t, m.Matches(e, nil))
}

func TestEntityAttributesMatcherEmptyCriteriaVacuouslyMatchesNoExtension(t *testing.T) {
	m := EntityAttributesMatcher{}
	require.True(t, m.Matches(&saml.EntityDescriptor{EntityID: "e"}, nil))
}

func TestRegistrationAuthorityMatcher(t *testing.T) {
	m := RegistrationAuthorityMatcher{Authorities: map[string]bool{"https://registrar.example.org": true}}
	e := &saml.EntityDescriptor{
		Extensions: &saml.Extensions{
			RegistrationInfo: &saml.RegistrationInfo{RegistrationAuthority: "https://registrar.example.org"},
		},
	}
	require.True(t, m.Matches(e, nil))

	require.False(t, m.Matches(&saml.EntityDescriptor{}, nil))
}
