// Package trust implements the TrustEngine collaborator referenced by the
// XMLSigning and SimpleSigning policy rules (§4.1, §4.4 Verification): given
// a candidate signature/token and a set of credentials resolved from
// metadata, decide whether it validates against at least one of them.
package trust

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"

	"github.com/insaplace/opensamlcore/credential"
)

// SignatureVerifier is the minimal primitive an XML-DSig or simple-sign
// verification reduces to once a digest and raw signature bytes are in
// hand: RSA-PKCS1v15/SHA-256 verification against a resolved credential.
// The xmlsec package's enveloped-XML path (Verifier.VerifyEnveloped) and
// blob path (VerifyBlob) do their own verification and do not call this
// package.
type SignatureVerifier interface {
	Verify(data, signature []byte, candidates []credential.Credential) (*credential.Credential, error)
}

// Engine is the SignatureTrustEngine of §4.1/§4.4: "attempt each [candidate]
// in turn until one succeeds".
type Engine struct {
	Verifier SignatureVerifier
}

// New returns an Engine using the default RSA-SHA256 verifier.
func New() *Engine {
	return &Engine{Verifier: RSASHA256Verifier{}}
}

// Validate tries every candidate credential in order and returns the first
// one the signature verifies against, or an error if none do.
func (e *Engine) Validate(data, signature []byte, candidates []credential.Credential) (*credential.Credential, error) {
	verifier := e.Verifier
	if verifier == nil {
		verifier = RSASHA256Verifier{}
	}
	return verifier.Verify(data, signature, candidates)
}

// RSASHA256Verifier verifies an RSA-PKCS1v15/SHA-256 signature, the
// default algorithm pairing this module uses wherever the peer's metadata
// does not specify SigAlg explicitly (redirect/simple-sign bindings most
// commonly use RSA-SHA1 or RSA-SHA256; see xmlsec.VerifyBlob for the
// algorithm-keyed dispatch — this type covers the SHA-256 case).
type RSASHA256Verifier struct{}

func (RSASHA256Verifier) Verify(data, signature []byte, candidates []credential.Credential) (*credential.Credential, error) {
	digest := sha256.Sum256(data)
	for i := range candidates {
		pub, ok := candidates[i].PublicKey.(*rsa.PublicKey)
		if !ok {
			continue
		}
		if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], signature); err == nil {
			return &candidates[i], nil
		}
	}
	return nil, errNoCandidateVerified
}

var errNoCandidateVerified = verifyError("signature did not verify against any candidate credential")

type verifyError string

func (e verifyError) Error() string { return string(e) }
