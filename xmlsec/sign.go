package xmlsec

import (
	"crypto/rsa"
	"crypto/x509"

	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"

	saml "github.com/insaplace/opensamlcore"
)

// Signer produces an enveloped XML-DSig signature over a SAML object using
// goxmldsig's SigningContext, applying the Reference shape and transform
// list of §4.4.
type Signer struct {
	Key  *rsa.PrivateKey
	Cert *x509.Certificate

	// Intermediates, if any, are included in the KeyInfo/X509Data chain.
	Intermediates []*x509.Certificate
}

// SignEnveloped signs el in place (adding a <Signature> child) and returns
// the signed element. id, when non-empty, becomes the Reference URI
// "#<id>"; an empty id signs the whole document, matching the "whole
// document when there is no ID" case of §4.4.
func (s *Signer) SignEnveloped(el *etree.Element, id string) (*etree.Element, error) {
	ks, err := s.keyStore()
	if err != nil {
		return nil, saml.Wrap(saml.KindSecurityPolicy, "failed to build signing key store", err)
	}

	ctx := dsig.NewDefaultSigningContext(ks)
	if err := ctx.SetSignatureMethod(dsig.RSASHA256SignatureMethod); err != nil {
		return nil, saml.Wrap(saml.KindSecurityPolicy, "failed to set signature method", err)
	}
	ctx.Canonicalizer = dsig.MakeC14N10ExclusiveCanonicalizerWithPrefixList("")

	if id != "" {
		el.CreateAttr("ID", id)
	}

	signed, err := ctx.SignEnveloped(el)
	if err != nil {
		return nil, saml.Wrap(saml.KindSecurityPolicy, "signing failed", err)
	}
	return signed, nil
}

func (s *Signer) keyStore() (dsig.X509KeyStore, error) {
	return &staticKeyStore{key: s.Key, cert: s.Cert, intermediates: s.Intermediates}, nil
}

// staticKeyStore adapts a crypto.Signer + certificate chain already held
// by the caller (typically loaded from the filesystem credential/trust
// engine the spec treats as an external collaborator, §1) to goxmldsig's
// X509KeyStore contract.
type staticKeyStore struct {
	key           *rsa.PrivateKey
	cert          *x509.Certificate
	intermediates []*x509.Certificate
}

func (s *staticKeyStore) GetKeyPair() (*rsa.PrivateKey, []byte, error) {
	return s.key, s.cert.Raw, nil
}
