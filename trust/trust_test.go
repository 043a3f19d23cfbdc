package trust

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/insaplace/opensamlcore/credential"
)

func genCred(t *testing.T) (*rsa.PrivateKey, credential.Credential) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return priv, credential.Credential{PublicKey: &priv.PublicKey}
}

func TestEngineValidateAcceptsCorrectSignature(t *testing.T) {
	priv, cred := genCred(t)
	data := []byte("some signed blob")
	digest := sha256.Sum256(data)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest[:])
	require.NoError(t, err)

	e := New()
	match, err := e.Validate(data, sig, []credential.Credential{cred})
	require.NoError(t, err)
	require.NotNil(t, match)
}

func TestEngineValidateRejectsTamperedData(t *testing.T) {
	priv, cred := genCred(t)
	data := []byte("some signed blob")
	digest := sha256.Sum256(data)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest[:])
	require.NoError(t, err)

	e := New()
	_, err = e.Validate([]byte("different blob"), sig, []credential.Credential{cred})
	require.Error(t, err)
}

func TestEngineValidateTriesEachCandidateInOrder(t *testing.T) {
	priv, cred := genCred(t)
	_, decoy := genCred(t)
	data := []byte("payload")
	digest := sha256.Sum256(data)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest[:])
	require.NoError(t, err)

	e := New()
	match, err := e.Validate(data, sig, []credential.Credential{decoy, cred})
	require.NoError(t, err)
	require.NotNil(t, match)
}

func TestEngineValidateNoCandidates(t *testing.T) {
	e := New()
	_, err := e.Validate([]byte("x"), []byte("y"), nil)
	require.Error(t, err)
}

func TestEngineDefaultsVerifierWhenNil(t *testing.T) {
	priv, cred := genCred(t)
	data := []byte("payload")
	digest := sha256.Sum256(data)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest[:])
	require.NoError(t, err)

	e := &Engine{}
	match, err := e.Validate(data, sig, []credential.Credential{cred})
	require.NoError(t, err)
	require.NotNil(t, match)
}
