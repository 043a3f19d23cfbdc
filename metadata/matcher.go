package metadata

import (
	"strings"

	saml "github.com/insaplace/opensamlcore"
)

// NameMatcher matches an entityID or any of its enclosing group names
// (§4.2 Matchers: Name).
type NameMatcher struct {
	Names map[string]bool
}

func (m NameMatcher) Matches(e *saml.EntityDescriptor, groupNames []string) bool {
	if m.Names[e.EntityID] {
		return true
	}
	for _, g := range groupNames {
		if m.Names[g] {
			return true
		}
	}
	return false
}

// AttributeCriterion is one configured <Attribute> an EntityAttributesMatcher
// requires (§4.2 Matchers: EntityAttributes).
type AttributeCriterion struct {
	Name       string
	NameFormat string // defaults to "unspecified"
	Values     []string
}

// EntityAttributesMatcher matches iff every value of every configured
// Attribute is present in an EntityAttributes extension of the entity or
// an enclosing group (§4.2 Matchers: EntityAttributes). Since this
// module's EntityAttributes model lives only on EntityDescriptor.Extensions
// (not on EntitiesDescriptor), group-level attribute matching degrades to
// entity-level matching; see DESIGN.md for the rationale.
type EntityAttributesMatcher struct {
	Criteria []AttributeCriterion
	TrimTags bool
}

func (m EntityAttributesMatcher) Matches(e *saml.EntityDescriptor, _ []string) bool {
	if e.Extensions == nil || e.Extensions.EntityAttributes == nil {
		return len(m.Criteria) == 0
	}
	present := e.Extensions.EntityAttributes.Attributes
	for _, crit := range m.Criteria {
		format := crit.NameFormat
		if format == "" {
			format = "urn:oasis:names:tc:SAML:2.0:attrname-format:unspecified"
		}
		for _, want := range crit.Values {
			if m.TrimTags {
				want = strings.TrimSpace(want)
			}
			if !m.hasValue(present, crit.Name, format, want) {
				return false
			}
		}
	}
	return true
}

func (m EntityAttributesMatcher) hasValue(attrs []saml.Attribute, name, format, want string) bool {
	for _, a := range attrs {
		if a.Name != name {
			continue
		}
		if a.NameFormat != "" && a.NameFormat != format {
			continue
		}
		for _, v := range a.AttributeValues {
			got := v.Value
			if m.TrimTags {
				got = strings.TrimSpace(got)
			}
			if got == want {
				return true
			}
		}
	}
	return false
}

// RegistrationAuthorityMatcher matches iff the mdrpi:RegistrationInfo of
// the entity or any enclosing group names a registrationAuthority in
// Authorities (§4.2 Matchers: RegistrationAuthority). As with
// EntityAttributesMatcher, RegistrationInfo is modeled only at the entity
// level here, so "or an enclosing group" is satisfied vacuously; see
// DESIGN.md.
type RegistrationAuthorityMatcher struct {
	Authorities map[string]bool
}

func (m RegistrationAuthorityMatcher) Matches(e *saml.EntityDescriptor, _ []string) bool {
	if e.Extensions == nil || e.Extensions.RegistrationInfo == nil {
		return false
	}
	return m.Authorities[e.Extensions.RegistrationInfo.RegistrationAuthority]
}
