package saml

import (
	"encoding/xml"
	"time"
)

// RootObject is embedded by every top-level signable SAML object (§3): it
// carries the identity/time pair every policy rule keys off of, plus the
// optional enveloped Signature. It is not itself an XML element — each
// concrete type embeds it and repeats the tags that differ (element name,
// namespace).
type RootObject struct {
	ID           string     `xml:"ID,attr"`
	IssueInstant time.Time  `xml:"IssueInstant,attr"`
	Signature    *Signature `xml:"Signature,omitempty"`
}

// Signature is a minimal opaque view onto an enveloped ds:Signature element;
// the xmlsec package is responsible for producing/consuming the full
// XML-DSig content by operating on the surrounding etree.Document, not on
// this struct. Keeping it as RawXML lets unrelated SAML object parsing
// round-trip a signature it does not otherwise interpret.
type Signature struct {
	XMLName    xml.Name `xml:"http://www.w3.org/2000/09/xmldsig# Signature"`
	SignedInfo SignedInfo
	InnerXML   string `xml:",innerxml"`
}

// SignedInfo exposes just enough of ds:SignedInfo for the profile validator
// (§4.4) to inspect references and transforms without depending on a full
// XML-DSig object model.
type SignedInfo struct {
	XMLName               xml.Name `xml:"SignedInfo"`
	CanonicalizationMethod struct {
		Algorithm string `xml:"Algorithm,attr"`
	} `xml:"CanonicalizationMethod"`
	SignatureMethod struct {
		Algorithm string `xml:"Algorithm,attr"`
	} `xml:"SignatureMethod"`
	References []Reference `xml:"Reference"`
}

// Reference mirrors ds:Reference: a URI plus an ordered transform list,
// exactly the shape the SAML signature profile restricts (§4.4).
type Reference struct {
	URI        string   `xml:"URI,attr"`
	Transforms TransformList `xml:"Transforms"`
	DigestMethod struct {
		Algorithm string `xml:"Algorithm,attr"`
	} `xml:"DigestMethod"`
	DigestValue string `xml:"DigestValue"`
}

// TransformList holds the Algorithm URI of each ds:Transform, in order.
type TransformList []string

func (l *TransformList) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var v struct {
		Transforms []struct {
			Algorithm string `xml:"Algorithm,attr"`
		} `xml:"Transform"`
	}
	err := d.DecodeElement(&v, &start)
	for _, t := range v.Transforms {
		*l = append(*l, t.Algorithm)
	}
	return err
}

// Issuer identifies the entity that produced a message or assertion (§3,
// §4.1). A nil *Issuer matches any operand under DefaultIssuerMatchingPolicy;
// an Issuer with an empty value is compared like any other.
type Issuer struct {
	XMLName         xml.Name `xml:"urn:oasis:names:tc:SAML:2.0:assertion Issuer"`
	Format          string   `xml:"Format,attr,omitempty"`
	NameQualifier   string   `xml:"NameQualifier,attr,omitempty"`
	SPNameQualifier string   `xml:"SPNameQualifier,attr,omitempty"`
	Value           string   `xml:",chardata"`
}

// NameID is the general-purpose identifier type used for Subject, Issuer-ish
// contexts outside of the Issuer element itself, and NameIDPolicy responses.
type NameID struct {
	Format          string `xml:"Format,attr,omitempty"`
	NameQualifier   string `xml:"NameQualifier,attr,omitempty"`
	SPNameQualifier string `xml:"SPNameQualifier,attr,omitempty"`
	SPProvidedID    string `xml:"SPProvidedID,attr,omitempty"`
	Value           string `xml:",chardata"`
}

// Subject, §3.
type Subject struct {
	NameID                *NameID                 `xml:"NameID,omitempty"`
	SubjectConfirmations  []SubjectConfirmation   `xml:"SubjectConfirmation,omitempty"`
}

// SubjectConfirmation, §3.
type SubjectConfirmation struct {
	Method                  string                   `xml:"Method,attr"`
	SubjectConfirmationData *SubjectConfirmationData `xml:"SubjectConfirmationData,omitempty"`
}

// SubjectConfirmationData, §3. NotBefore/NotOnOrAfter are pointers because
// their presence (vs. absence, meaning "unbounded") is meaningful to the
// Bearer rule.
type SubjectConfirmationData struct {
	NotBefore    *time.Time `xml:"NotBefore,attr,omitempty"`
	NotOnOrAfter *time.Time `xml:"NotOnOrAfter,attr,omitempty"`
	Recipient    string     `xml:"Recipient,attr,omitempty"`
	InResponseTo string     `xml:"InResponseTo,attr,omitempty"`
	Address      string     `xml:"Address,attr,omitempty"`
}

// Conditions, §3.
type Conditions struct {
	NotBefore           *time.Time            `xml:"NotBefore,attr,omitempty"`
	NotOnOrAfter        *time.Time            `xml:"NotOnOrAfter,attr,omitempty"`
	AudienceRestrictions []AudienceRestriction `xml:"AudienceRestriction,omitempty"`
	OneTimeUse          []struct{}            `xml:"OneTimeUse,omitempty"`
	ProxyRestrictions   []ProxyRestriction    `xml:"ProxyRestriction,omitempty"`

	// DelegationRestriction is the SAML 2 delegation condition extension
	// (urn:oasis:names:tc:SAML:2.0:conditions:delegation), consumed by the
	// DelegationRestriction policy rule (§4.1 table).
	DelegationRestriction *DelegationRestriction `xml:"urn:oasis:names:tc:SAML:2.0:conditions:delegation DelegationRestriction,omitempty"`

	// ExtensionConditions holds any <Condition>/<Conditions> child the
	// schema doesn't model by name; the Ignore rule (§4.1) is how a policy
	// accepts one of these as harmless rather than failing ConditionsRule
	// with "unknown condition".
	ExtensionConditions []ExtensionCondition `xml:",any"`
}

// DelegationRestriction, the delegation-chain condition: an ordered list of
// Delegate entries, oldest first, recording each successive actor a
// credential was delegated to.
type DelegationRestriction struct {
	Delegates []Delegate `xml:"urn:oasis:names:tc:SAML:2.0:conditions:delegation Delegate"`
}

// Delegate identifies one actor in a delegation chain and when the
// delegation to it occurred.
type Delegate struct {
	NameID             *NameID    `xml:"NameID,omitempty"`
	ConfirmationMethod string     `xml:"ConfirmationMethod,attr,omitempty"`
	DelegationInstant  *time.Time `xml:"DelegationInstant,attr,omitempty"`
}

// SameDelegate reports whether d1 (from the message) matches d2 (from the
// configured policy chain): same NameID (Format defaulted to unspecified,
// Value/NameQualifier/SPNameQualifier equal) and, if d2 specifies a
// ConfirmationMethod, the same one (§4.1, grounded in
// DelegationRestrictionRule.cpp's _isSameDelegate).
func SameDelegate(d1, d2 Delegate) bool {
	if d1.NameID == nil || d2.NameID == nil {
		return false
	}
	if d2.ConfirmationMethod != "" && d1.ConfirmationMethod != d2.ConfirmationMethod {
		return false
	}
	format := func(n *NameID) string {
		if n.Format == "" {
			return NameIDFormatUnspecified
		}
		return n.Format
	}
	return format(d1.NameID) == format(d2.NameID) &&
		d1.NameID.Value == d2.NameID.Value &&
		d1.NameID.NameQualifier == d2.NameID.NameQualifier &&
		d1.NameID.SPNameQualifier == d2.NameID.SPNameQualifier
}

// ExtensionCondition is an opaque condition element identified by its
// qualified name; used by the Ignore rule (§4.1 rule catalog).
type ExtensionCondition struct {
	XMLName xml.Name
	Type    string `xml:"http://www.w3.org/2001/XMLSchema-instance type,attr"`
}

// QName returns the element's qualified name as "{namespace} local", the key
// the Ignore rule matches against.
func (c ExtensionCondition) QName() string {
	return "{" + c.XMLName.Space + "} " + c.XMLName.Local
}

// AudienceRestriction, §3.
type AudienceRestriction struct {
	Audiences []string `xml:"Audience"`
}

// ProxyRestriction, §3.
type ProxyRestriction struct {
	Count      *int     `xml:"Count,attr,omitempty"`
	Audiences  []string `xml:"Audience,omitempty"`
}

// Assertion, §3.
type Assertion struct {
	RootObject
	XMLName            xml.Name            `xml:"urn:oasis:names:tc:SAML:2.0:assertion Assertion"`
	Version            string              `xml:"Version,attr"`
	Issuer             *Issuer             `xml:"Issuer,omitempty"`
	Subject            *Subject            `xml:"Subject,omitempty"`
	Conditions         *Conditions         `xml:"Conditions,omitempty"`
	AuthnStatements    []AuthnStatement    `xml:"AuthnStatement,omitempty"`
	AttributeStatements []AttributeStatement `xml:"AttributeStatement,omitempty"`
}

// AuthnStatement, minimal shape needed by the bearer/profile rules.
type AuthnStatement struct {
	AuthnInstant        time.Time  `xml:"AuthnInstant,attr"`
	SessionIndex        string     `xml:"SessionIndex,attr,omitempty"`
	SessionNotOnOrAfter *time.Time `xml:"SessionNotOnOrAfter,attr,omitempty"`
}

// AttributeStatement, AttributeValue and Attribute: minimal shapes; the
// spec treats these as opaque beans with accessors, so no release-specific
// value typing is modeled here.
type AttributeStatement struct {
	Attributes []Attribute `xml:"Attribute,omitempty"`
}

type Attribute struct {
	Name            string           `xml:"Name,attr"`
	NameFormat      string           `xml:"NameFormat,attr,omitempty"`
	FriendlyName    string           `xml:"FriendlyName,attr,omitempty"`
	AttributeValues []AttributeValue `xml:"AttributeValue,omitempty"`
}

type AttributeValue struct {
	Type  string `xml:"http://www.w3.org/2001/XMLSchema-instance type,attr,omitempty"`
	Value string `xml:",chardata"`
}
