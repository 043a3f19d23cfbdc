package binding

import (
	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/internal/xmlutil"
	"github.com/insaplace/opensamlcore/policy"
)

// DecodeSAML2SOAP implements the SAML 2 SOAP/PAOS (ECP) binding (§4.3
// table): parse the envelope and perform the same two-layer policy
// evaluation as DecodeSAML1SOAP — envelope first (layer 1, where an ECP
// PAOS header or client-certificate rule applies), then reset(messageOnly)
// and evaluate the unwrapped samlp:AuthnRequest or samlp:Response (layer
// 2). The PAOS SOAP header itself (RelayState, ECP response consumer URL)
// is left to the caller to inspect on env.Header before invoking this
// decoder; only the Body is meaningful to the policy engine.
func DecodeSAML2SOAP(p *policy.Policy, req policy.Request, role, protocol string, contentType string, body []byte) (*Result, error) {
	if contentType != "" && contentType != "text/xml" && contentType != "application/vnd.paos+xml" {
		return nil, saml.Newf(saml.KindBinding, "SAML 2 SOAP/PAOS binding requires a text/xml or PAOS body, got %q", contentType)
	}

	var env saml.SOAPEnvelope
	if err := xmlutil.Unmarshal(body, &env); err != nil {
		return nil, saml.Wrap(saml.KindBinding, "failed to parse SOAP envelope", err)
	}

	envelopeMsg := &policy.Message{RawDocument: body}
	if err := p.Evaluate(envelopeMsg, req); err != nil {
		return nil, err
	}
	p.Reset(true)

	root, err := parseSAML2Message(env.Body.InnerXML)
	if err != nil {
		return nil, err
	}

	msg := &policy.Message{Root: root, RawDocument: env.Body.InnerXML}

	switch m := root.(type) {
	case *saml.Response:
		if len(m.Assertions) == 1 {
			msg.Assertion = &m.Assertions[0]
		}
		if err := extractDetails(m, firstAssertionIssuer(m), p); err != nil {
			return nil, err
		}
	case *saml.AuthnRequest:
		if m.Issuer != nil {
			if err := p.SetIssuer(m.Issuer); err != nil {
				return nil, err
			}
		}
		p.MessageID = m.ID
		p.IssueInstant = m.IssueInstant
	}

	if err := lookupIssuerRole(p.MetadataProvider, p.Issuer, role, protocol, p); err != nil {
		return nil, err
	}
	if err := p.Evaluate(msg, req); err != nil {
		return nil, err
	}

	return &Result{Message: msg, Authenticated: p.Authenticated, Issuer: p.Issuer}, nil
}
