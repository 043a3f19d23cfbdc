package xmlsec

import (
	"testing"

	"github.com/stretchr/testify/require"

	saml "github.com/insaplace/opensamlcore"
)

func sigWithRef(uri string, transforms []string, digest string) *saml.Signature {
	sig := &saml.Signature{}
	sig.SignedInfo.References = []saml.Reference{
		{URI: uri, Transforms: transforms},
	}
	sig.SignedInfo.References[0].DigestMethod.Algorithm = digest
	return sig
}

func TestSignatureProfileValidatorAccepts(t *testing.T) {
	v := &SignatureProfileValidator{}
	sig := sigWithRef("#abc123", []string{saml.TransformEnvelopedSignature, saml.TransformExclusiveC14N}, saml.DigestSHA256)
	require.NoError(t, v.Validate(sig, "abc123"))
}

func TestSignatureProfileValidatorRejectsMismatchedURI(t *testing.T) {
	v := &SignatureProfileValidator{}
	sig := sigWithRef("#wrong", []string{saml.TransformEnvelopedSignature}, saml.DigestSHA256)
	err := v.Validate(sig, "abc123")
	require.Error(t, err)
}

func TestSignatureProfileValidatorRequiresEnveloped(t *testing.T) {
	v := &SignatureProfileValidator{}
	sig := sigWithRef("#abc123", []string{saml.TransformExclusiveC14N}, saml.DigestSHA256)
	err := v.Validate(sig, "abc123")
	require.Error(t, err)
	require.Contains(t, err.Error(), "enveloped-signature")
}

func TestSignatureProfileValidatorRejectsDisallowedTransform(t *testing.T) {
	v := &SignatureProfileValidator{}
	sig := sigWithRef("#abc123", []string{saml.TransformEnvelopedSignature, "http://example.org/custom-transform"}, saml.DigestSHA256)
	err := v.Validate(sig, "abc123")
	require.Error(t, err)
	require.Contains(t, err.Error(), "disallowed transform")
}

func TestSignatureProfileValidatorRejectsMultipleReferences(t *testing.T) {
	v := &SignatureProfileValidator{}
	sig := sigWithRef("#abc123", []string{saml.TransformEnvelopedSignature}, saml.DigestSHA256)
	sig.SignedInfo.References = append(sig.SignedInfo.References, sig.SignedInfo.References[0])
	err := v.Validate(sig, "abc123")
	require.Error(t, err)
	require.Contains(t, err.Error(), "exactly one Reference")
}

func TestSignatureProfileValidatorAcceptsConfiguredDigest(t *testing.T) {
	v := &SignatureProfileValidator{AcceptedDigests: map[string]bool{saml.DigestSHA3: true}}
	sig := sigWithRef("#abc123", []string{saml.TransformEnvelopedSignature}, saml.DigestSHA3)
	require.NoError(t, v.Validate(sig, "abc123"))
}

func TestSignatureProfileValidatorRejectsUnlistedDigest(t *testing.T) {
	v := &SignatureProfileValidator{}
	sig := sigWithRef("#abc123", []string{saml.TransformEnvelopedSignature}, saml.DigestSHA3)
	err := v.Validate(sig, "abc123")
	require.Error(t, err)
}

func TestSignatureProfileValidatorNilSignature(t *testing.T) {
	v := &SignatureProfileValidator{}
	require.Error(t, v.Validate(nil, "abc123"))
}
