package binding

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"io"
	"net/http"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/policy"
)

// DecodeSAML2Redirect implements the SAML 2 HTTP-Redirect binding (§4.3
// table): base64-decode the SAMLRequest/SAMLResponse query parameter,
// inflate it as raw DEFLATE (no zlib/gzip header), parse, and evaluate.
// Signature verification for a signed redirect happens via SimpleSigningRule
// reading SigAlg/Signature/RelayState straight off the raw query string, not
// here.
func DecodeSAML2Redirect(p *policy.Policy, req policy.Request, role, protocol string) (*Result, error) {
	if req.Method() != http.MethodGet {
		return nil, saml.New(saml.KindBinding, "SAML 2 Redirect binding requires an HTTP GET")
	}

	field := "SAMLResponse"
	b64 := req.FormValue(field)
	if b64 == "" {
		field = "SAMLRequest"
		b64 = req.FormValue(field)
	}
	if b64 == "" {
		return nil, saml.New(saml.KindBinding, "query carries neither SAMLResponse nor SAMLRequest")
	}

	compressed, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, saml.Wrap(saml.KindBinding, "invalid base64 in redirect query parameter", err)
	}

	raw, err := inflateRaw(compressed)
	if err != nil {
		return nil, saml.Wrap(saml.KindBinding, "failed to inflate redirect query parameter", err)
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

func inflateRaw(compressed []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	return io.ReadAll(r)
}
