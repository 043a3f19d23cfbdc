// Package xmlsec implements the SAML profile restrictions over XML-DSig
// and XML-Encryption (§4.4, §4.5): the SAML-specific Reference shape,
// content-reference construction with namespace-prefix pinning, message
// "blob" signature verification for redirect/simple-sign bindings, and
// hybrid multi-recipient encryption for assertions. The XML-DSig/XML-Enc
// primitives themselves (canonicalization, digesting, RSA operations) are
// external collaborators: github.com/russellhaering/goxmldsig for
// enveloped-signature creation/verification, github.com/beevik/etree for
// DOM-level manipulation.
package xmlsec

import (
	saml "github.com/insaplace/opensamlcore"
)

// allowedTransforms is the SAML profile's subset of XML-DSig transforms
// (§4.4 "Profile validation"): enveloped-signature plus one of the two
// canonicalization forms.
var allowedTransforms = map[string]bool{
	saml.TransformEnvelopedSignature: true,
	saml.TransformExclusiveC14N:      true,
	saml.TransformC14N:               true,
}

// SignatureProfileValidator enforces the SAML subset of XML-DSig described
// in §4.4: exactly one Reference, whose URI is empty or "#<ID>" matching
// the containing object's identifier, whose Transforms are a subset of
// {enveloped-signature, exclusive-c14n, c14n} and include
// enveloped-signature.
type SignatureProfileValidator struct {
	// AcceptedDigests, when non-empty, additionally allows the named
	// digest algorithms beyond SHA-1/SHA-256, e.g. SHA-3. Nothing in this
	// module fills it from a peer role's AlgorithmSupport extension; the
	// caller sets it.
	AcceptedDigests map[string]bool
}

// Validate checks sig against objectID, the xsd:ID of the SAML object the
// signature is enveloped within.
func (v *SignatureProfileValidator) Validate(sig *saml.Signature, objectID string) error {
	if sig == nil {
		return saml.New(saml.KindSecurityPolicy, "no signature present")
	}
	refs := sig.SignedInfo.References
	if len(refs) != 1 {
		return saml.Newf(saml.KindSecurityPolicy, "signature profile violation: expected exactly one Reference, found %d", len(refs))
	}
	ref := refs[0]

	if ref.URI != "" {
		want := "#" + objectID
		if objectID == "" || ref.URI != want {
			return saml.Newf(saml.KindSecurityPolicy, "signature profile violation: Reference URI %q does not match signed object's ID %q", ref.URI, objectID)
		}
	}

	sawEnveloped := false
	for _, t := range ref.Transforms {
		if !allowedTransforms[t] {
			return saml.Newf(saml.KindSecurityPolicy, "signature profile violation: disallowed transform %q", t)
		}
		if t == saml.TransformEnvelopedSignature {
			sawEnveloped = true
		}
	}
	if !sawEnveloped {
		return saml.New(saml.KindSecurityPolicy, "signature profile violation: enveloped-signature transform is required")
	}

	if !v.digestAccepted(ref.DigestMethod.Algorithm) {
		return saml.Newf(saml.KindSecurityPolicy, "signature profile violation: unsupported digest algorithm %q", ref.DigestMethod.Algorithm)
	}

	return nil
}

func (v *SignatureProfileValidator) digestAccepted(alg string) bool {
	switch alg {
	case saml.DigestSHA1, saml.DigestSHA256, "":
		return true
	}
	return v.AcceptedDigests != nil && v.AcceptedDigests[alg]
}
