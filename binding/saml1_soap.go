package binding

import (
	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/internal/xmlutil"
	"github.com/insaplace/opensamlcore/policy"
)

// DecodeSAML1SOAP implements the SAML 1.x SOAP binding (§4.3 table):
// require a text/xml body, parse the envelope, require exactly one
// samlp:Request in the Body, and evaluate the policy twice — once against
// the envelope itself (layer 1, transport-level rules such as
// ClientCertAuthRule), then again, after resetting the message portion of
// the policy state, against the unwrapped inner request (layer 2).
func DecodeSAML1SOAP(p *policy.Policy, req policy.Request, contentType string, body []byte) (*Result, error) {
	if contentType != "" && contentType != "text/xml" {
		return nil, saml.Newf(saml.KindBinding, "SAML 1 SOAP binding requires a text/xml body, got %q", contentType)
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

	var request saml.SAML1Request
	if err := xmlutil.Unmarshal(env.Body.InnerXML, &request); err != nil {
		return nil, saml.Wrap(saml.KindBinding, "failed to parse samlp:Request body", err)
	}
	if len(request.AssertionArtifacts) == 0 {
		return nil, saml.New(saml.KindBinding, "SAML 1 SOAP request carries no AssertionArtifact")
	}

	p.MessageID = request.RequestID
	p.IssueInstant = request.IssueInstant

	msg := &policy.Message{Root: &request, RawDocument: env.Body.InnerXML}
	if err := p.Evaluate(msg, req); err != nil {
		return nil, err
	}

	return &Result{Message: msg, Authenticated: p.Authenticated, Issuer: p.Issuer}, nil
}
