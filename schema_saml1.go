package saml

import (
	"encoding/xml"
	"time"
)

// SAML 1.x core/protocol subset (§4.3 SAML 1 decoders, §4.1 SAML1BrowserSSO
// rule). Kept deliberately smaller than the 2.0 model: 1.x is supported for
// the POST/Artifact/SOAP bindings and the browser-SSO profile rule only, per
// §1's scope.

// SAML1Assertion mirrors the subset of saml1:Assertion the BrowserSSO rule
// and POST/Artifact decoders need.
type SAML1Assertion struct {
	XMLName         xml.Name             `xml:"urn:oasis:names:tc:SAML:1.0:assertion Assertion"`
	AssertionID     string               `xml:"AssertionID,attr"`
	IssueInstant    time.Time            `xml:"IssueInstant,attr"`
	Issuer          string               `xml:"Issuer,attr"`
	Conditions      *SAML1Conditions     `xml:"Conditions,omitempty"`
	Statements      []SAML1Statement     `xml:",any"`
	Signature       *Signature           `xml:"Signature,omitempty"`
}

// SAML1Conditions mirrors saml1:Conditions; 1.x conditions have no
// AudienceRestriction/OneTimeUse nesting distinctions relevant here beyond
// the time window.
type SAML1Conditions struct {
	NotBefore    *time.Time `xml:"NotBefore,attr,omitempty"`
	NotOnOrAfter *time.Time `xml:"NotOnOrAfter,attr,omitempty"`
}

// SAML1Statement is any saml1:*Statement element; the BrowserSSO rule only
// cares whether each one carries a SubjectConfirmation with an acceptable
// method (§4.1).
type SAML1Statement struct {
	XMLName             xml.Name
	SubjectConfirmation *SAML1SubjectConfirmation `xml:"Subject>SubjectConfirmation,omitempty"`
}

type SAML1SubjectConfirmation struct {
	ConfirmationMethods []string `xml:"ConfirmationMethod"`
}

// SAML1Response is samlp:Response (§4.3 SAML1 POST/Artifact/SOAP decoders).
type SAML1Response struct {
	XMLName      xml.Name         `xml:"urn:oasis:names:tc:SAML:1.0:protocol Response"`
	ResponseID   string           `xml:"ResponseID,attr"`
	InResponseTo string           `xml:"InResponseTo,attr,omitempty"`
	IssueInstant time.Time        `xml:"IssueInstant,attr"`
	Recipient    string           `xml:"Recipient,attr,omitempty"`
	Status       SAML1Status      `xml:"Status"`
	Assertions   []SAML1Assertion `xml:"Assertion,omitempty"`
	Signature    *Signature       `xml:"Signature,omitempty"`
}

type SAML1Status struct {
	StatusCode SAML1StatusCode `xml:"StatusCode"`
}

type SAML1StatusCode struct {
	Value string `xml:"Value,attr"`
}

// SAML1Request is samlp:Request, the shape carried inside the SOAP binding
// (§4.3).
type SAML1Request struct {
	XMLName      xml.Name  `xml:"urn:oasis:names:tc:SAML:1.0:protocol Request"`
	RequestID    string    `xml:"RequestID,attr"`
	IssueInstant time.Time `xml:"IssueInstant,attr"`
	AssertionArtifacts []string `xml:"AssertionArtifact,omitempty"`
}

// SOAPEnvelope is the minimal soap11 envelope/body shape used by both the
// SAML1 SOAP decoder and SAML2 SOAP/PAOS decoder (§4.3).
type SOAPEnvelope struct {
	XMLName xml.Name   `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Header  SOAPHeader `xml:"Header"`
	Body    SOAPBody   `xml:"Body"`
}

type SOAPHeader struct {
	InnerXML []byte `xml:",innerxml"`
}

type SOAPBody struct {
	InnerXML []byte `xml:",innerxml"`
}
