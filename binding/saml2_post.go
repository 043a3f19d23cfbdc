package binding

import (
	"encoding/base64"
	"net/http"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/policy"
)

// DecodeSAML2POST implements the SAML 2 HTTP-POST and HTTP-POST-SimpleSign
// bindings (§4.3 table): base64-decode the SAMLResponse/SAMLRequest form
// field, parse it, perform message-detail extraction, look up the issuer's
// role, and evaluate the policy. POST-SimpleSign carries no embedded
// signature; its SimpleSigningRule reads the same decoded form fields
// directly off req, so this decoder does not need to special-case it.
func DecodeSAML2POST(p *policy.Policy, req policy.Request, role, protocol string) (*Result, error) {
	if req.Method() != http.MethodPost {
		return nil, saml.New(saml.KindBinding, "SAML 2 POST binding requires an HTTP POST")
	}

	field := "SAMLResponse"
	b64 := req.FormValue(field)
	if b64 == "" {
		field = "SAMLRequest"
		b64 = req.FormValue(field)
	}
	if b64 == "" {
		return nil, saml.New(saml.KindBinding, "POST body carries neither SAMLResponse nor SAMLRequest")
	}

	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, saml.Wrap(saml.KindBinding, "invalid base64 in POST body", err)
	}

	root, err := parseSAML2Message(raw)
	if err != nil {
		return nil, err
	}

	msg := &policy.Message{Root: root, RawDocument: raw}
	relayState := req.FormValue("RelayState")

	if resp, ok := root.(*saml.Response); ok {
		if len(resp.Assertions) == 1 {
			msg.Assertion = &resp.Assertions[0]
		}
		if err := extractDetails(resp, firstAssertionIssuer(resp), p); err != nil {
			return nil, err
		}
	} else if areq, ok := root.(*saml.AuthnRequest); ok && areq.Issuer != nil {
		if err := p.SetIssuer(areq.Issuer); err != nil {
			return nil, err
		}
		p.MessageID = areq.ID
		p.IssueInstant = areq.IssueInstant
	}

	if err := lookupIssuerRole(p.MetadataProvider, p.Issuer, role, protocol, p); err != nil {
		return nil, err
	}
	if err := p.Evaluate(msg, req); err != nil {
		return nil, err
	}

	return &Result{Message: msg, RelayState: relayState, Authenticated: p.Authenticated, Issuer: p.Issuer}, nil
}
