package xmlsec

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/insaplace/opensamlcore/credential"
)

// newTestCredential generates a throwaway self-signed RSA credential for
// tests; keyName tags it so multi-recipient assertions can tell candidates
// apart.
func newTestCredential(t *testing.T, keyName string) (*rsa.PrivateKey, credential.Credential) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating test key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: keyName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("creating test certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parsing test certificate: %v", err)
	}
	return priv, credential.Credential{
		PublicKey:   cert.PublicKey,
		Certificate: cert,
		KeyName:     keyName,
		Usage:       credential.UsageEncryption,
	}
}
