package metadata

import (
	"time"

	saml "github.com/insaplace/opensamlcore"

	"github.com/insaplace/opensamlcore/logger"
)

// Filter mutates or rejects a loaded metadata tree before indexing (§4.2
// Filters): "takes a (context, rootObject) and mutates the tree or
// throws". Filters run in registration order, after load and before
// indexing (buildIndex).
type Filter interface {
	Filter(root interface{}) (interface{}, error)
}

// Chain runs filters in order, feeding each one's output to the next.
type Chain []Filter

func (c Chain) Filter(root interface{}) (interface{}, error) {
	var err error
	for _, f := range c {
		root, err = f.Filter(root)
		if err != nil {
			return nil, err
		}
	}
	return root, nil
}

// WhitelistFilter keeps only entities named in Accept, dropping every
// other EntityDescriptor from the tree (§4.2 Filters: Whitelist).
type WhitelistFilter struct {
	Accept map[string]bool
}

func (f *WhitelistFilter) Filter(root interface{}) (interface{}, error) {
	return filterEntities(root, func(e *saml.EntityDescriptor) bool { return f.Accept[e.EntityID] })
}

// BlacklistFilter drops entities named in Reject (§4.2 Filters: Blacklist).
type BlacklistFilter struct {
	Reject map[string]bool
}

func (f *BlacklistFilter) Filter(root interface{}) (interface{}, error) {
	return filterEntities(root, func(e *saml.EntityDescriptor) bool { return !f.Reject[e.EntityID] })
}

// Matcher decides whether an entity (with its enclosing group names, for
// matchers that need them) should be included by an Include/Exclude
// filter (§4.2 Matchers).
type Matcher interface {
	Matches(e *saml.EntityDescriptor, groupNames []string) bool
}

// IncludeFilter keeps entities for which Match matches (§4.2 Filters:
// Include).
type IncludeFilter struct{ Match Matcher }

func (f *IncludeFilter) Filter(root interface{}) (interface{}, error) {
	groups := groupMembership(root)
	return filterEntities(root, func(e *saml.EntityDescriptor) bool {
		return f.Match.Matches(e, groups[e.EntityID])
	})
}

// ExcludeFilter drops entities for which Match matches (§4.2 Filters:
// Exclude).
type ExcludeFilter struct{ Match Matcher }

func (f *ExcludeFilter) Filter(root interface{}) (interface{}, error) {
	groups := groupMembership(root)
	return filterEntities(root, func(e *saml.EntityDescriptor) bool {
		return !f.Match.Matches(e, groups[e.EntityID])
	})
}

// EntityRoleWhitelistFilter removes role descriptors not in Roles,
// optionally dropping entities that end up with no remaining roles and
// groups that become empty (§4.2 Filters: EntityRoleWhitelist).
type EntityRoleWhitelistFilter struct {
	Roles            map[string]bool
	RemoveEmptyEntities bool
	RemoveEmptyGroups   bool
}

func (f *EntityRoleWhitelistFilter) Filter(root interface{}) (interface{}, error) {
	pruneRoles := func(e *saml.EntityDescriptor) {
		if !f.Roles[saml.RoleIDPSSO] {
			e.IDPSSODescriptors = nil
		}
		if !f.Roles[saml.RoleSPSSO] {
			e.SPSSODescriptors = nil
		}
		if !f.Roles[saml.RoleAuthnAuthority] {
			e.AuthnAuthorityDescriptors = nil
		}
		if !f.Roles[saml.RoleAttributeAuthority] {
			e.AttributeAuthorityDescriptors = nil
		}
		if !f.Roles[saml.RolePDP] {
			e.PDPDescriptors = nil
		}
	}
	hasAnyRole := func(e *saml.EntityDescriptor) bool {
		return len(e.IDPSSODescriptors) > 0 || len(e.SPSSODescriptors) > 0 ||
			len(e.AuthnAuthorityDescriptors) > 0 || len(e.AttributeAuthorityDescriptors) > 0 ||
			len(e.PDPDescriptors) > 0
	}

	var walk func(interface{}) (interface{}, bool)
	walk = func(r interface{}) (interface{}, bool) {
		switch v := r.(type) {
		case *saml.EntityDescriptor:
			pruneRoles(v)
			if f.RemoveEmptyEntities && !hasAnyRole(v) {
				return nil, false
			}
			return v, true
		case *saml.EntitiesDescriptor:
			kept := v.EntityDescriptors[:0]
			for i := range v.EntityDescriptors {
				if out, ok := walk(&v.EntityDescriptors[i]); ok {
					kept = append(kept, *out.(*saml.EntityDescriptor))
				}
			}
			v.EntityDescriptors = kept

			keptGroups := v.EntitiesDescriptors[:0]
			for i := range v.EntitiesDescriptors {
				if out, ok := walk(&v.EntitiesDescriptors[i]); ok {
					keptGroups = append(keptGroups, *out.(*saml.EntitiesDescriptor))
				}
			}
			v.EntitiesDescriptors = keptGroups

			if f.RemoveEmptyGroups && len(v.EntityDescriptors) == 0 && len(v.EntitiesDescriptors) == 0 {
				return nil, false
			}
			return v, true
		}
		return r, true
	}

	out, _ := walk(root)
	return out, nil
}

// SignatureVerifier is the minimal collaborator SignatureFilter needs: can
// it validate an enveloped signature on this object? No type in this
// module implements it; it is kept as a narrow interface here so this
// package doesn't import xmlsec (which would create an import cycle
// through credential resolution).
type SignatureVerifier interface {
	VerifyMetadataSignature(sig *saml.Signature, rawXML []byte) error
}

// SignatureFilter enforces that the root (and, if VerifyRoles, every role)
// carries a valid XML signature, dropping children that fail (§4.2
// Filters: Signature). VerifyBackup controls whether the filter runs at
// all when the tree was loaded from the XML provider's on-disk backing
// file (§9 "may be skipped on backup-file load when verifyBackup=false").
type SignatureFilter struct {
	Verifier     SignatureVerifier
	VerifyRoles  bool
	VerifyBackup bool
	Log          logger.Interface
}

func (f *SignatureFilter) log() logger.Interface {
	if f.Log != nil {
		return f.Log
	}
	return logger.DefaultLogger
}

// FilterLoadedFromBackup is called by the XML provider instead of Filter
// when the tree being filtered came from the backing file rather than a
// fresh fetch (§9).
func (f *SignatureFilter) FilterLoadedFromBackup(root interface{}, rawXML []byte) (interface{}, error) {
	if !f.VerifyBackup {
		return root, nil
	}
	return f.Filter(root)
}

func (f *SignatureFilter) Filter(root interface{}) (interface{}, error) {
	if f.Verifier == nil {
		return root, nil
	}
	switch v := root.(type) {
	case *saml.EntityDescriptor:
		if v.Signature == nil {
			return nil, saml.New(saml.KindMetadataFilter, "root EntityDescriptor is unsigned")
		}
		if err := f.Verifier.VerifyMetadataSignature(v.Signature, nil); err != nil {
			return nil, saml.Wrap(saml.KindMetadataFilter, "root EntityDescriptor signature failed to verify", err)
		}
	case *saml.EntitiesDescriptor:
		if v.Signature == nil {
			return nil, saml.New(saml.KindMetadataFilter, "root EntitiesDescriptor is unsigned")
		}
		if err := f.Verifier.VerifyMetadataSignature(v.Signature, nil); err != nil {
			return nil, saml.Wrap(saml.KindMetadataFilter, "root EntitiesDescriptor signature failed to verify", err)
		}
		if f.VerifyRoles {
			kept := v.EntityDescriptors[:0]
			for i := range v.EntityDescriptors {
				if f.entityRolesOK(&v.EntityDescriptors[i]) {
					kept = append(kept, v.EntityDescriptors[i])
				} else {
					f.log().Printf("metadata: dropping entity %s, a role signature failed to verify", v.EntityDescriptors[i].EntityID)
				}
			}
			v.EntityDescriptors = kept
		}
	}
	return root, nil
}

func (f *SignatureFilter) entityRolesOK(e *saml.EntityDescriptor) bool {
	for i := range e.IDPSSODescriptors {
		if sig := e.IDPSSODescriptors[i].Signature; sig != nil {
			if err := f.Verifier.VerifyMetadataSignature(sig, nil); err != nil {
				return false
			}
		}
	}
	for i := range e.SPSSODescriptors {
		if sig := e.SPSSODescriptors[i].Signature; sig != nil {
			if err := f.Verifier.VerifyMetadataSignature(sig, nil); err != nil {
				return false
			}
		}
	}
	return true
}

// RequireValidUntilFilter rejects trees whose root lacks ValidUntil or
// whose validity interval exceeds MaxValidityInterval (§4.2 Filters:
// RequireValidUntil).
type RequireValidUntilFilter struct {
	MaxValidityInterval time.Duration
	now                 func() time.Time
}

func (f *RequireValidUntilFilter) clock() time.Time {
	if f.now != nil {
		return f.now()
	}
	return saml.TimeNow()
}

func (f *RequireValidUntilFilter) Filter(root interface{}) (interface{}, error) {
	var validUntil time.Time
	switch v := root.(type) {
	case *saml.EntityDescriptor:
		validUntil = v.ValidUntil
	case *saml.EntitiesDescriptor:
		validUntil = v.ValidUntil
	}
	if validUntil.IsZero() {
		return nil, saml.New(saml.KindMetadataFilter, "root metadata document lacks a validUntil attribute")
	}
	if f.MaxValidityInterval > 0 && validUntil.Sub(f.clock()) > f.MaxValidityInterval {
		return nil, saml.Newf(saml.KindMetadataFilter, "root metadata document's validity interval exceeds the configured maximum of %s", f.MaxValidityInterval)
	}
	return root, nil
}

// EntityAttributesFilter injects tag-attributes into matched entities'
// Extensions (§4.2 Filters: EntityAttributes).
type EntityAttributesFilter struct {
	Match      Matcher
	Attributes []saml.Attribute
}

func (f *EntityAttributesFilter) Filter(root interface{}) (interface{}, error) {
	groups := groupMembership(root)
	forEachEntity(root, func(e *saml.EntityDescriptor) {
		if !f.Match.Matches(e, groups[e.EntityID]) {
			return
		}
		if e.Extensions == nil {
			e.Extensions = &saml.Extensions{}
		}
		if e.Extensions.EntityAttributes == nil {
			e.Extensions.EntityAttributes = &saml.EntityAttributes{}
		}
		e.Extensions.EntityAttributes.Attributes = append(e.Extensions.EntityAttributes.Attributes, f.Attributes...)
	})
	return root, nil
}

// UIInfoFilter injects a UIInfo extension into matched IdP roles; when
// Replace is set, any existing one is evicted first (§4.2 Filters: UIInfo).
type UIInfoFilter struct {
	Match   Matcher
	UIInfo  saml.UIInfo
	Replace bool
}

func (f *UIInfoFilter) Filter(root interface{}) (interface{}, error) {
	groups := groupMembership(root)
	forEachEntity(root, func(e *saml.EntityDescriptor) {
		if !f.Match.Matches(e, groups[e.EntityID]) {
			return
		}
		for i := range e.IDPSSODescriptors {
			role := &e.IDPSSODescriptors[i]
			if role.Extensions == nil {
				role.Extensions = &saml.Extensions{}
			}
			if role.Extensions.UIInfo != nil && !f.Replace {
				continue
			}
			ui := f.UIInfo
			role.Extensions.UIInfo = &ui
		}
	})
	return root, nil
}

// InlineLogoFilter strips data: URL logos from UIInfo (§4.2 Filters:
// InlineLogo).
type InlineLogoFilter struct{}

func (InlineLogoFilter) Filter(root interface{}) (interface{}, error) {
	forEachEntity(root, func(e *saml.EntityDescriptor) {
		for i := range e.IDPSSODescriptors {
			ui := e.IDPSSODescriptors[i].Extensions
			if ui == nil || ui.UIInfo == nil {
				continue
			}
			kept := ui.UIInfo.Logos[:0]
			for _, logo := range ui.UIInfo.Logos {
				if len(logo.Value) < 5 || logo.Value[:5] != "data:" {
					kept = append(kept, logo)
				}
			}
			ui.UIInfo.Logos = kept
		}
	})
	return root, nil
}

// --- shared tree-walking helpers ---

func filterEntities(root interface{}, keep func(*saml.EntityDescriptor) bool) (interface{}, error) {
	switch v := root.(type) {
	case *saml.EntityDescriptor:
		if keep(v) {
			return v, nil
		}
		return nil, nil
	case *saml.EntitiesDescriptor:
		kept := v.EntityDescriptors[:0]
		for i := range v.EntityDescriptors {
			if keep(&v.EntityDescriptors[i]) {
				kept = append(kept, v.EntityDescriptors[i])
			}
		}
		v.EntityDescriptors = kept
		for i := range v.EntitiesDescriptors {
			if _, err := filterEntities(&v.EntitiesDescriptors[i], keep); err != nil {
				return nil, err
			}
		}
		return v, nil
	}
	return root, nil
}

func forEachEntity(root interface{}, fn func(*saml.EntityDescriptor)) {
	switch v := root.(type) {
	case *saml.EntityDescriptor:
		fn(v)
	case *saml.EntitiesDescriptor:
		for i := range v.EntityDescriptors {
			fn(&v.EntityDescriptors[i])
		}
		for i := range v.EntitiesDescriptors {
			forEachEntity(&v.EntitiesDescriptors[i], fn)
		}
	}
}

// groupMembership returns, for every entityID in the tree, the list of
// enclosing group Names (outermost first), used by the Name and
// EntityAttributes matchers (§4.2 Matchers).
func groupMembership(root interface{}) map[string][]string {
	out := make(map[string][]string)
	var walk func(interface{}, []string)
	walk = func(r interface{}, names []string) {
		switch v := r.(type) {
		case *saml.EntitiesDescriptor:
			next := names
			if v.Name != nil {
				next = append(append([]string{}, names...), *v.Name)
			}
			for i := range v.EntityDescriptors {
				out[v.EntityDescriptors[i].EntityID] = next
			}
			for i := range v.EntitiesDescriptors {
				walk(&v.EntitiesDescriptors[i], next)
			}
		case *saml.EntityDescriptor:
			out[v.EntityID] = names
		}
	}
	walk(root, nil)
	return out
}
