package binding

import (
	"encoding/base64"
	"net/http"
	"strings"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/internal/xmlutil"
	"github.com/insaplace/opensamlcore/policy"
)

// DecodeSAML1POST implements the SAML 1.x Browser/POST profile (§4.3
// table): require POST, base64-decode SAMLResponse, relayState = TARGET,
// parse as samlp:Response, reject on Recipient mismatch, evaluate.
func DecodeSAML1POST(p *policy.Policy, req policy.Request) (*Result, error) {
	if req.Method() != http.MethodPost {
		return nil, saml.New(saml.KindBinding, "SAML 1 POST binding requires an HTTP POST")
	}

	b64 := req.FormValue("SAMLResponse")
	if b64 == "" {
		return nil, saml.New(saml.KindBinding, "POST body carries no SAMLResponse")
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, saml.Wrap(saml.KindBinding, "invalid base64 in SAMLResponse", err)
	}

	var resp saml.SAML1Response
	if err := xmlutil.Unmarshal(raw, &resp); err != nil {
		return nil, saml.Wrap(saml.KindBinding, "failed to parse SAML 1 Response", err)
	}

	if resp.Recipient != "" && resp.Recipient != stripQueryString(req.URL()) {
		return nil, saml.Newf(saml.KindSecurityPolicy, "SAML 1 Response recipient mismatch: expected %q, got %q", req.URL(), resp.Recipient)
	}

	p.MessageID = resp.ResponseID
	p.IssueInstant = resp.IssueInstant
	p.InResponseTo = resp.InResponseTo
	if len(resp.Assertions) > 0 && resp.Assertions[0].Issuer != "" {
		if err := p.SetIssuer(&saml.Issuer{Value: resp.Assertions[0].Issuer, Format: saml.NameIDFormatEntity}); err != nil {
			return nil, err
		}
	}

	msg := &policy.Message{Root: &resp, RawDocument: raw}
	if len(resp.Assertions) == 1 {
		msg.SAML1Assertion = &resp.Assertions[0]
	}

	if err := lookupIssuerRole(p.MetadataProvider, p.Issuer, saml.RoleIDPSSO, saml.SAML11ProtocolNamespace, p); err != nil {
		return nil, err
	}
	if err := p.Evaluate(msg, req); err != nil {
		return nil, err
	}

	return &Result{Message: msg, RelayState: req.FormValue("TARGET"), Authenticated: p.Authenticated, Issuer: p.Issuer}, nil
}

// stripQueryString removes everything from the first "?" onward, matching
// the "minus query" Recipient comparison (§4.3).
func stripQueryString(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}
