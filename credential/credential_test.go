package credential

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	saml "github.com/insaplace/opensamlcore"
)

func testCertPEMBody(t *testing.T, cn string) string {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(der)
}

type fakeRoleSource struct {
	keys []saml.KeyDescriptor
}

func (f fakeRoleSource) Keys() []saml.KeyDescriptor { return f.keys }

func kdWithCert(t *testing.T, use, keyName, cn string) saml.KeyDescriptor {
	return saml.KeyDescriptor{
		Use: use,
		KeyInfo: saml.KeyInfo{
			KeyName: keyName,
			X509Data: saml.X509Data{
				X509Certificates: []saml.X509Certificate{{Data: testCertPEMBody(t, cn)}},
			},
		},
	}
}

func TestResolveFiltersByUsage(t *testing.T) {
	source := fakeRoleSource{keys: []saml.KeyDescriptor{
		kdWithCert(t, "signing", "sign-key", "signer"),
		kdWithCert(t, "encryption", "enc-key", "encrypter"),
	}}
	r := NewResolver()

	creds, err := r.Resolve(Criteria{EntityID: "https://idp.example.org", Usage: UsageSigning}, source)
	require.NoError(t, err)
	require.Len(t, creds, 1)
	require.Equal(t, "sign-key", creds[0].KeyName)
}

func TestResolveEmptyUseMatchesBothUsages(t *testing.T) {
	source := fakeRoleSource{keys: []saml.KeyDescriptor{kdWithCert(t, "", "any-key", "any")}}
	r := NewResolver()

	signing, err := r.Resolve(Criteria{EntityID: "e", Usage: UsageSigning}, source)
	require.NoError(t, err)
	require.Len(t, signing, 1)

	encryption, err := r.Resolve(Criteria{EntityID: "e", Usage: UsageEncryption}, source)
	require.NoError(t, err)
	require.Len(t, encryption, 1)
}

func TestResolveCachesResult(t *testing.T) {
	calls := 0
	source := countingRoleSource{fakeRoleSource{keys: []saml.KeyDescriptor{kdWithCert(t, "signing", "k", "cn")}}, &calls}
	r := NewResolver()

	_, err := r.Resolve(Criteria{EntityID: "e", Usage: UsageSigning}, source)
	require.NoError(t, err)
	_, err = r.Resolve(Criteria{EntityID: "e", Usage: UsageSigning}, source)
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

type countingRoleSource struct {
	fakeRoleSource
	calls *int
}

func (c countingRoleSource) Keys() []saml.KeyDescriptor {
	*c.calls++
	return c.fakeRoleSource.keys
}

func TestInvalidateDropsOnlyMatchingEntity(t *testing.T) {
	sourceA := fakeRoleSource{keys: []saml.KeyDescriptor{kdWithCert(t, "signing", "a", "a")}}
	sourceB := fakeRoleSource{keys: []saml.KeyDescriptor{kdWithCert(t, "signing", "b", "b")}}
	r := NewResolver()

	_, err := r.Resolve(Criteria{EntityID: "https://a.example.org", Usage: UsageSigning}, sourceA)
	require.NoError(t, err)
	_, err = r.Resolve(Criteria{EntityID: "https://b.example.org", Usage: UsageSigning}, sourceB)
	require.NoError(t, err)

	r.Invalidate("https://a.example.org")

	r.mu.Lock()
	_, stillCachedA := r.cache[cacheKey(Criteria{EntityID: "https://a.example.org", Usage: UsageSigning})]
	_, stillCachedB := r.cache[cacheKey(Criteria{EntityID: "https://b.example.org", Usage: UsageSigning})]
	r.mu.Unlock()

	require.False(t, stillCachedA)
	require.True(t, stillCachedB)
}

func TestResolveSkipsKeyDescriptorWithNoCertificate(t *testing.T) {
	source := fakeRoleSource{keys: []saml.KeyDescriptor{{Use: "signing"}}}
	r := NewResolver()

	creds, err := r.Resolve(Criteria{EntityID: "e", Usage: UsageSigning}, source)
	require.NoError(t, err)
	require.Empty(t, creds)
}

func TestResolveFiltersByKeyName(t *testing.T) {
	source := fakeRoleSource{keys: []saml.KeyDescriptor{
		kdWithCert(t, "signing", "wanted", "wanted"),
		kdWithCert(t, "signing", "other", "other"),
	}}
	r := NewResolver()

	creds, err := r.Resolve(Criteria{EntityID: "e", Usage: UsageSigning, KeyName: "wanted"}, source)
	require.NoError(t, err)
	require.Len(t, creds, 1)
	require.Equal(t, "wanted", creds[0].KeyName)
}
