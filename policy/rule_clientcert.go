package policy

import (
	"bytes"
	"crypto/x509"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/credential"
)

// ClientCertAuthRule matches a client certificate presented on the
// transport against the signing credentials of the peer role resolved
// from metadata (§4.1 table; SUPPLEMENTED FEATURE 1 in SPEC_FULL.md,
// grounded in the original ClientCertAuthRule.cpp: match any leaf of the
// presented chain against any resolved signing credential's raw DER).
type ClientCertAuthRule struct {
	ErrorFatal bool
	Resolver   *credential.Resolver
}

func (r *ClientCertAuthRule) Evaluate(msg *Message, req Request, p *Policy) (bool, error) {
	certs := req.ClientCertificates()
	if len(certs) == 0 {
		return false, nil
	}
	if p.Issuer == nil || p.MetadataProvider == nil {
		return false, nil
	}

	roleSource, ok := p.IssuerRole.(credential.RoleKeySource)
	if !ok {
		return false, nil
	}

	resolver := r.Resolver
	if resolver == nil {
		resolver = credential.NewResolver()
	}
	candidates, err := resolver.Resolve(credential.Criteria{
		EntityID: p.Issuer.Value,
		Usage:    credential.UsageSigning,
	}, roleSource)
	if err != nil {
		return false, r.fail(err)
	}

	for _, raw := range certs {
		leaf, err := x509.ParseCertificate(raw)
		if err != nil {
			continue
		}
		for _, cand := range candidates {
			if cand.Certificate != nil && bytes.Equal(cand.Certificate.Raw, leaf.Raw) {
				p.Authenticated = true
				return true, nil
			}
		}
	}

	return false, r.fail(saml.New(saml.KindSecurityPolicy, "no presented client certificate matched the peer's signing credentials"))
}

func (r *ClientCertAuthRule) fail(err error) error {
	if r.ErrorFatal {
		return err
	}
	return nil
}
