package xmlsec

import (
	"crypto/x509"

	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/credential"
)

// Verifier checks an enveloped XML-DSig signature against a set of
// candidate credentials (§4.4 Verification: "attempt each candidate in
// turn until one succeeds"), enforcing the SAML signature profile first
// (§4.4 "Profile validation").
type Verifier struct {
	Profile *SignatureProfileValidator
}

// NewVerifier returns a Verifier with the default profile validator.
func NewVerifier() *Verifier {
	return &Verifier{Profile: &SignatureProfileValidator{}}
}

// VerifyEnveloped validates the enveloped signature on el (whose xsd:ID is
// objectID) against candidates, returning the credential it verified
// against. el must still contain its <Signature> child; goxmldsig strips it
// from the element it returns but this function validates in place and
// does not mutate el.
func (v *Verifier) VerifyEnveloped(el *etree.Element, objectID string, sig *saml.Signature, candidates []credential.Credential) (*credential.Credential, error) {
	profile := v.Profile
	if profile == nil {
		profile = &SignatureProfileValidator{}
	}
	if err := profile.Validate(sig, objectID); err != nil {
		return nil, err
	}

	var lastErr error
	for i := range candidates {
		cert := candidates[i].Certificate
		if cert == nil {
			continue
		}
		ctx := dsig.NewDefaultValidationContext(&staticCertStore{certs: []*x509.Certificate{cert}})
		ctx.Clock = nil // a nil Clock makes goxmldsig check certificate validity against the system clock
		if _, err := ctx.Validate(el); err != nil {
			lastErr = err
			continue
		}
		return &candidates[i], nil
	}
	if lastErr == nil {
		lastErr = saml.New(saml.KindSecurityPolicy, "no candidate credentials available to verify against")
	}
	return nil, saml.Wrap(saml.KindSecurityPolicy, "signature did not verify against any candidate credential", lastErr)
}

// staticCertStore adapts a fixed certificate list to goxmldsig's
// X509CertificateStore contract.
type staticCertStore struct {
	certs []*x509.Certificate
}

func (s *staticCertStore) Certificates() ([]*x509.Certificate, error) {
	return s.certs, nil
}
