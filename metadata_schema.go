package saml

import (
	"encoding/xml"
	"time"
)

// EntityDescriptor, §3.
type EntityDescriptor struct {
	XMLName    xml.Name   `xml:"urn:oasis:names:tc:SAML:2.0:metadata EntityDescriptor"`
	EntityID   string     `xml:"entityID,attr"`
	ID         string     `xml:"ID,attr,omitempty"`
	ValidUntil time.Time  `xml:"validUntil,attr,omitempty"`
	CacheDuration time.Duration `xml:"cacheDuration,attr,omitempty"`
	Signature  *Signature `xml:"Signature,omitempty"`
	Extensions *Extensions `xml:"Extensions,omitempty"`

	IDPSSODescriptors           []IDPSSODescriptor           `xml:"IDPSSODescriptor,omitempty"`
	SPSSODescriptors            []SPSSODescriptor            `xml:"SPSSODescriptor,omitempty"`
	AuthnAuthorityDescriptors   []AuthnAuthorityDescriptor   `xml:"AuthnAuthorityDescriptor,omitempty"`
	AttributeAuthorityDescriptors []AttributeAuthorityDescriptor `xml:"AttributeAuthorityDescriptor,omitempty"`
	PDPDescriptors              []PDPDescriptor              `xml:"PDPDescriptor,omitempty"`
	AffiliationDescriptor       *AffiliationDescriptor       `xml:"AffiliationDescriptor,omitempty"`

	Organization    *Organization     `xml:"Organization,omitempty"`
	ContactPersons  []ContactPerson   `xml:"ContactPerson,omitempty"`

	// parentGroups is not set anywhere in this module; the indexer
	// propagates validUntil while walking the tree, and the metadata
	// filters compute enclosing group names with groupMembership.
	parentGroups []string
}

// EffectiveValidUntil returns the min(self, every enclosing group) validity
// instant computed during indexing; zero means unbounded.
func (e *EntityDescriptor) EffectiveValidUntil() time.Time { return e.ValidUntil }

// EntitiesDescriptor, §3: a recursive named group.
type EntitiesDescriptor struct {
	XMLName            xml.Name             `xml:"urn:oasis:names:tc:SAML:2.0:metadata EntitiesDescriptor"`
	Name               *string              `xml:"Name,attr,omitempty"`
	ID                 string               `xml:"ID,attr,omitempty"`
	ValidUntil         time.Time            `xml:"validUntil,attr,omitempty"`
	CacheDuration      time.Duration        `xml:"cacheDuration,attr,omitempty"`
	Signature          *Signature           `xml:"Signature,omitempty"`
	EntitiesDescriptors []EntitiesDescriptor `xml:"EntitiesDescriptor,omitempty"`
	EntityDescriptors  []EntityDescriptor   `xml:"EntityDescriptor,omitempty"`
}

// RoleDescriptor, §3: composed-in by every concrete role type. Signature,
// cacheDuration and validUntil are plain fields on this struct rather than
// separate trait objects; its only method is SupportsProtocol.
type RoleDescriptor struct {
	ID                         string           `xml:"ID,attr,omitempty"`
	ValidUntil                 *time.Time       `xml:"validUntil,attr,omitempty"`
	CacheDuration              time.Duration    `xml:"cacheDuration,attr,omitempty"`
	ProtocolSupportEnumeration string           `xml:"protocolSupportEnumeration,attr"`
	ErrorURL                   string           `xml:"errorURL,attr,omitempty"`
	Signature                  *Signature       `xml:"Signature,omitempty"`
	Extensions                 *Extensions      `xml:"Extensions,omitempty"`
	KeyDescriptors             []KeyDescriptor  `xml:"KeyDescriptor,omitempty"`
	Organization               *Organization    `xml:"Organization,omitempty"`
	ContactPersons             []ContactPerson  `xml:"ContactPerson,omitempty"`
}

// SupportsProtocol reports whether protocol is one of the whitespace-split
// tokens of ProtocolSupportEnumeration, compared by exact string equality
// (§3 Invariants).
func (r RoleDescriptor) SupportsProtocol(protocol string) bool {
	for _, tok := range splitWhitespace(r.ProtocolSupportEnumeration) {
		if tok == protocol {
			return true
		}
	}
	return false
}

func splitWhitespace(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if isSpace {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

// SSODescriptor adds the fields shared by IDPSSODescriptor and
// SPSSODescriptor (§3: role list).
type SSODescriptor struct {
	RoleDescriptor
	ArtifactResolutionServices []IndexedEndpoint `xml:"ArtifactResolutionService,omitempty"`
	SingleLogoutServices       []Endpoint        `xml:"SingleLogoutService,omitempty"`
	ManageNameIDServices       []Endpoint        `xml:"ManageNameIDService,omitempty"`
	NameIDFormats              []string          `xml:"NameIDFormat,omitempty"`
}

type IDPSSODescriptor struct {
	SSODescriptor
	WantAuthnRequestsSigned *bool             `xml:"WantAuthnRequestsSigned,attr,omitempty"`
	SingleSignOnServices    []Endpoint        `xml:"SingleSignOnService,omitempty"`
}

type SPSSODescriptor struct {
	SSODescriptor
	AuthnRequestsSigned       *bool             `xml:"AuthnRequestsSigned,attr,omitempty"`
	WantAssertionsSigned      *bool             `xml:"WantAssertionsSigned,attr,omitempty"`
	AssertionConsumerServices []IndexedEndpoint `xml:"AssertionConsumerService,omitempty"`
}

type AuthnAuthorityDescriptor struct {
	RoleDescriptor
	AuthnQueryServices   []Endpoint `xml:"AuthnQueryService"`
	AssertionIDRequestServices []Endpoint `xml:"AssertionIDRequestService,omitempty"`
	NameIDFormats        []string   `xml:"NameIDFormat,omitempty"`
}

type AttributeAuthorityDescriptor struct {
	RoleDescriptor
	AttributeServices []Endpoint `xml:"AttributeService"`
	NameIDFormats     []string   `xml:"NameIDFormat,omitempty"`
}

type PDPDescriptor struct {
	RoleDescriptor
	AuthzServices []Endpoint `xml:"AuthzService"`
	NameIDFormats []string   `xml:"NameIDFormat,omitempty"`
}

type AffiliationDescriptor struct {
	AffiliationOwnerID string   `xml:"affiliationOwnerID,attr"`
	ID                 string   `xml:"ID,attr,omitempty"`
	ValidUntil         *time.Time `xml:"validUntil,attr,omitempty"`
	AffiliateMembers   []string `xml:"AffiliateMember"`
	KeyDescriptors     []KeyDescriptor `xml:"KeyDescriptor,omitempty"`
}

// KeyDescriptor, §3: use is one of signing, encryption, or empty (meaning
// both).
type KeyDescriptor struct {
	Use               string             `xml:"use,attr,omitempty"`
	KeyInfo           KeyInfo            `xml:"http://www.w3.org/2000/09/xmldsig# KeyInfo"`
	EncryptionMethods []EncryptionMethod `xml:"EncryptionMethod,omitempty"`
}

// UsableFor reports whether this descriptor applies to usage ("signing" or
// "encryption"); an empty Use applies to both (§4.4 Verification, §4.5
// Encryption Engine).
func (k KeyDescriptor) UsableFor(usage string) bool {
	return k.Use == "" || k.Use == usage
}

type EncryptionMethod struct {
	Algorithm string `xml:"Algorithm,attr"`
	KeySize   int    `xml:"KeySize,omitempty"`
}

type KeyInfo struct {
	XMLName  xml.Name  `xml:"http://www.w3.org/2000/09/xmldsig# KeyInfo"`
	KeyName  string    `xml:"KeyName,omitempty"`
	X509Data X509Data  `xml:"X509Data"`
}

type X509Data struct {
	X509Certificates []X509Certificate `xml:"X509Certificate"`
}

type X509Certificate struct {
	Data string `xml:",chardata"`
}

type Organization struct {
	OrganizationNames        []LocalizedName `xml:"OrganizationName"`
	OrganizationDisplayNames []LocalizedName `xml:"OrganizationDisplayName"`
	OrganizationURLs         []LocalizedName `xml:"OrganizationURL"`
}

type LocalizedName struct {
	Lang  string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
	Value string `xml:",chardata"`
}

type ContactPerson struct {
	ContactType     string `xml:"contactType,attr"`
	Company         string `xml:"Company,omitempty"`
	GivenName       string `xml:"GivenName,omitempty"`
	SurName         string `xml:"SurName,omitempty"`
	EmailAddresses  []string `xml:"EmailAddress,omitempty"`
	TelephoneNumbers []string `xml:"TelephoneNumber,omitempty"`
}

// Endpoint, IndexedEndpoint — the non-generic wire shapes; EndpointManager
// (endpoint_manager.go) provides lookup over slices of either.
type Endpoint struct {
	Binding          string `xml:"Binding,attr"`
	Location         string `xml:"Location,attr"`
	ResponseLocation string `xml:"ResponseLocation,attr,omitempty"`
}

func (e Endpoint) GetBinding() string { return e.Binding }

type IndexedEndpoint struct {
	Binding          string `xml:"Binding,attr"`
	Location         string `xml:"Location,attr"`
	ResponseLocation string `xml:"ResponseLocation,attr,omitempty"`
	Index            int    `xml:"index,attr"`
	IsDefault        *bool  `xml:"isDefault,attr,omitempty"`
}

func (e IndexedEndpoint) GetBinding() string { return e.Binding }
func (e IndexedEndpoint) GetIndex() int      { return e.Index }
func (e IndexedEndpoint) GetIsDefault() bool { return e.IsDefault != nil && *e.IsDefault }

// Extensions, §3: heterogeneous extension content. Each known extension
// kind gets a typed slot; unrecognized extension elements are preserved as
// raw XML so filters that don't understand them still round-trip them.
type Extensions struct {
	UIInfo           *UIInfo           `xml:"urn:oasis:names:tc:SAML:metadata:ui UIInfo,omitempty"`
	DiscoHints       *DiscoHints       `xml:"urn:oasis:names:tc:SAML:metadata:ui DiscoHints,omitempty"`
	EntityAttributes *EntityAttributes `xml:"urn:oasis:names:tc:SAML:metadata:attribute EntityAttributes,omitempty"`
	RegistrationInfo *RegistrationInfo `xml:"urn:oasis:names:tc:SAML:metadata:rpi RegistrationInfo,omitempty"`
	AlgorithmSupport *AlgorithmSupport `xml:"urn:oasis:names:tc:SAML:metadata:algsupport,omitempty"`
	Other            []RawExtension    `xml:",any"`
}

type RawExtension struct {
	XMLName  xml.Name
	InnerXML []byte `xml:",innerxml"`
}

type UIInfo struct {
	DisplayNames          []LocalizedName `xml:"DisplayName,omitempty"`
	Descriptions          []LocalizedName `xml:"Description,omitempty"`
	Keywords              []LocalizedName `xml:"Keywords,omitempty"`
	InformationURLs       []LocalizedName `xml:"InformationURL,omitempty"`
	PrivacyStatementURLs  []LocalizedName `xml:"PrivacyStatementURL,omitempty"`
	Logos                 []Logo          `xml:"Logo,omitempty"`
}

type Logo struct {
	Value  string `xml:",chardata"`
	Height int    `xml:"height,attr"`
	Width  int    `xml:"width,attr"`
	Lang   string `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
}

type DiscoHints struct {
	IPHints       []string `xml:"IPHint,omitempty"`
	DomainHints   []string `xml:"DomainHint,omitempty"`
	GeolocationHints []string `xml:"GeolocationHint,omitempty"`
}

// EntityAttributes, §4.2 EntityAttributes filter/matcher.
type EntityAttributes struct {
	Attributes []Attribute `xml:"urn:oasis:names:tc:SAML:2.0:assertion Attribute,omitempty"`
}

// RegistrationInfo, §4.2 RegistrationAuthority matcher.
type RegistrationInfo struct {
	RegistrationAuthority  string    `xml:"registrationAuthority,attr"`
	RegistrationInstant    time.Time `xml:"registrationInstant,attr,omitempty"`
}

// AlgorithmSupport, a SUPPLEMENTED FEATURE (SPEC_FULL.md item 4): the
// algorithm-support extension namespace's DigestMethod/SigningMethod list.
type AlgorithmSupport struct {
	DigestMethods  []string `xml:"DigestMethod>Algorithm,omitempty"`
	SigningMethods []string `xml:"SigningMethod>Algorithm,omitempty"`
}
