package saml

import "encoding/xml"

// StatusResponseType is embedded by every SAML 2 protocol response (§3).
type StatusResponseType struct {
	RootObject
	InResponseTo string `xml:"InResponseTo,attr,omitempty"`
	Destination  string `xml:"Destination,attr,omitempty"`
	Issuer       *Issuer `xml:"Issuer,omitempty"`
	Status       Status  `xml:"Status"`
}

// GetInResponseTo implements the message-detail-extraction accessor the
// binding decoders call (§4.3).
func (s StatusResponseType) GetInResponseTo() string { return s.InResponseTo }

// Status, §3.
type Status struct {
	StatusCode    StatusCode     `xml:"StatusCode"`
	StatusMessage string         `xml:"StatusMessage,omitempty"`
	StatusDetail  *StatusDetail  `xml:"StatusDetail,omitempty"`
}

// StatusCode, §3: Value plus an optional nested second-level StatusCode.
type StatusCode struct {
	Value      string      `xml:"Value,attr"`
	StatusCode *StatusCode `xml:"StatusCode,omitempty"`
}

// StatusDetail is intentionally opaque (any extension content).
type StatusDetail struct {
	InnerXML string `xml:",innerxml"`
}

// Response is the SAML 2 samlp:Response: zero or more assertions plus the
// inherited status/correlation fields.
type Response struct {
	StatusResponseType
	XMLName    xml.Name    `xml:"urn:oasis:names:tc:SAML:2.0:protocol Response"`
	Version    string      `xml:"Version,attr"`
	Assertions []Assertion `xml:"urn:oasis:names:tc:SAML:2.0:assertion Assertion,omitempty"`
	EncryptedAssertions []EncryptedElement `xml:"EncryptedAssertion,omitempty"`
}

// RequestAbstractType is embedded by every SAML 2 protocol request.
type RequestAbstractType struct {
	RootObject
	Version     string  `xml:"Version,attr"`
	Destination string  `xml:"Destination,attr,omitempty"`
	Issuer      *Issuer `xml:"Issuer,omitempty"`
}

// AuthnRequest, minimal shape for redirect/POST SP-initiated flows.
type AuthnRequest struct {
	RequestAbstractType
	XMLName                    xml.Name `xml:"urn:oasis:names:tc:SAML:2.0:protocol AuthnRequest"`
	AssertionConsumerServiceURL string   `xml:"AssertionConsumerServiceURL,attr,omitempty"`
	ProtocolBinding            string   `xml:"ProtocolBinding,attr,omitempty"`
	ForceAuthn                 *bool    `xml:"ForceAuthn,attr,omitempty"`
	RequestedAuthnContext      *RequestedAuthnContext `xml:"RequestedAuthnContext,omitempty"`
}

// RequestedAuthnContext constrains which authentication-context class URIs
// an AuthnRequest will accept, per the SAML 2.0 protocol schema.
type RequestedAuthnContext struct {
	Comparison            string   `xml:"Comparison,attr,omitempty"`
	AuthnContextClassRefs []string `xml:"AuthnContextClassRef,omitempty"`
}

// ArtifactResolve / ArtifactResponse, §4.3 SAML 2 Artifact binding.
type ArtifactResolve struct {
	RequestAbstractType
	XMLName  xml.Name `xml:"urn:oasis:names:tc:SAML:2.0:protocol ArtifactResolve"`
	Artifact string   `xml:"Artifact"`
}

type ArtifactResponse struct {
	StatusResponseType
	XMLName  xml.Name `xml:"urn:oasis:names:tc:SAML:2.0:protocol ArtifactResponse"`
	Version  string   `xml:"Version,attr"`
	Any      innerPayload `xml:",any"`
}

// innerPayload captures whatever element an ArtifactResponse wraps (a
// Response or a Request) without committing to one schema type up front;
// the SAML2 artifact decoder re-parses InnerXML into the concrete type it
// expects.
type innerPayload struct {
	XMLName  xml.Name
	InnerXML []byte `xml:",innerxml"`
}

// EncryptedElement is the generic EncryptedElementType of §4.5: an
// EncryptedData plus zero or more out-of-band EncryptedKeys.
type EncryptedElement struct {
	EncryptedData EncryptedData   `xml:"EncryptedData"`
	EncryptedKeys []EncryptedKey  `xml:"EncryptedKey,omitempty"`
}

type EncryptedData struct {
	ID               string            `xml:"Id,attr,omitempty"`
	Type             string            `xml:"Type,attr,omitempty"`
	EncryptionMethod EncryptionMethod  `xml:"EncryptionMethod"`
	KeyInfo          *KeyInfo          `xml:"http://www.w3.org/2000/09/xmldsig# KeyInfo,omitempty"`
	CipherData       CipherData        `xml:"CipherData"`
}

type CipherData struct {
	CipherValue string `xml:"CipherValue"`
}

type EncryptedKey struct {
	ID               string           `xml:"Id,attr,omitempty"`
	Recipient        string           `xml:"Recipient,attr,omitempty"`
	EncryptionMethod EncryptionMethod `xml:"EncryptionMethod"`
	KeyInfo          *KeyInfo         `xml:"http://www.w3.org/2000/09/xmldsig# KeyInfo,omitempty"`
	CipherData       CipherData       `xml:"CipherData"`
	CarriedKeyName   string           `xml:"CarriedKeyName,omitempty"`
	ReferenceList    *ReferenceList   `xml:"ReferenceList,omitempty"`
}

type ReferenceList struct {
	DataReferences []DataReference `xml:"DataReference"`
}

type DataReference struct {
	URI string `xml:"URI,attr"`
}
