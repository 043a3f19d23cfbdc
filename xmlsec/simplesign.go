package xmlsec

import (
	"crypto"
	"crypto/rsa"
	_ "crypto/sha1"
	_ "crypto/sha256"

	dsig "github.com/russellhaering/goxmldsig"
	"golang.org/x/crypto/sha3"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/credential"
)

// registered so crypto.SHA3_256.New() and rsa.VerifyPKCS1v15's DigestInfo
// prefix lookup work for peers that advertise SHA-3 (SPEC_FULL.md
// SUPPLEMENTED FEATURE 4); x/crypto/sha3 doesn't self-register the way
// crypto/sha1 and crypto/sha256 do.
func init() {
	crypto.RegisterHash(crypto.SHA3_256, sha3.New256)
}

// VerifyBlob verifies a SimpleSigning-style detached signature (§4.1
// "SimpleSigning blob reconstruction"): data is the reconstructed query or
// form blob, signature the raw (base64-decoded) signature bytes, sigAlg
// the peer-declared SigAlg URI selecting the digest/key algorithm.
// Candidates are tried in order, as with the XML-DSig trust engine.
func VerifyBlob(sigAlg string, data, signature []byte, candidates []credential.Credential) (*credential.Credential, error) {
	hash, ok := hashFor(sigAlg)
	if !ok {
		return nil, saml.Newf(saml.KindSecurityPolicy, "unsupported SigAlg %q", sigAlg)
	}
	digest := hash.New()
	digest.Write(data)
	sum := digest.Sum(nil)

	for i := range candidates {
		pub, ok := candidates[i].PublicKey.(*rsa.PublicKey)
		if !ok {
			continue
		}
		if err := rsa.VerifyPKCS1v15(pub, hash, sum, signature); err == nil {
			return &candidates[i], nil
		}
	}
	return nil, saml.New(saml.KindSecurityPolicy, "simple signature did not verify against any candidate credential")
}

func hashFor(sigAlg string) (crypto.Hash, bool) {
	switch sigAlg {
	case dsig.RSASHA1SignatureMethod:
		return crypto.SHA1, true
	case dsig.RSASHA256SignatureMethod:
		return crypto.SHA256, true
	case saml.SignatureMethodRSASHA3256:
		return crypto.SHA3_256, true
	}
	return 0, false
}
