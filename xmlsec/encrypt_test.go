package xmlsec

import (
	"crypto/rsa"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"

	"github.com/insaplace/opensamlcore/credential"
)

type testLogger struct{ lines []string }

func (l *testLogger) Printf(format string, args ...interface{}) {
	l.lines = append(l.lines, format)
}

func plaintextElement() *etree.Element {
	doc := etree.NewDocument()
	root := doc.CreateElement("Assertion")
	root.CreateAttr("ID", "_abc123")
	root.CreateElement("Subject").SetText("alice@example.org")
	return root
}

// §8 universal law: multi-recipient decryption — any recipient's private
// key decrypts the shared EncryptedData.
func TestEncryptDecryptMultiRecipient(t *testing.T) {
	priv1, cred1 := newTestCredential(t, "recipient-1")
	priv2, cred2 := newTestCredential(t, "recipient-2")
	priv3, cred3 := newTestCredential(t, "recipient-3")

	el := plaintextElement()
	ee, err := Encrypt(nil, el, []credential.Credential{cred1, cred2, cred3}, EncryptOptions{})
	require.NoError(t, err)
	require.Len(t, ee.EncryptedKeys, 3)
	require.NotEmpty(t, ee.EncryptedData.KeyInfo.KeyName)
	for _, k := range ee.EncryptedKeys {
		require.Equal(t, ee.EncryptedData.KeyInfo.KeyName, k.CarriedKeyName)
		require.Equal(t, "#"+ee.EncryptedData.ID, k.ReferenceList.DataReferences[0].URI)
	}

	for _, priv := range []*rsa.PrivateKey{priv1, priv2, priv3} {
		decrypted, err := Decrypt(ee, priv, nil)
		require.NoError(t, err)
		require.Equal(t, "Assertion", decrypted.Tag)
		require.Equal(t, "_abc123", decrypted.SelectAttrValue("ID", ""))
		require.Equal(t, "alice@example.org", decrypted.FindElement("Subject").Text())
	}
}

func TestEncryptSingleRecipientHasNoCarriedKeyName(t *testing.T) {
	_, cred := newTestCredential(t, "solo")
	el := plaintextElement()
	ee, err := Encrypt(nil, el, []credential.Credential{cred}, EncryptOptions{})
	require.NoError(t, err)
	require.Len(t, ee.EncryptedKeys, 1)
	require.Nil(t, ee.EncryptedData.KeyInfo)
	require.Empty(t, ee.EncryptedKeys[0].CarriedKeyName)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	_, credA := newTestCredential(t, "a")
	privB, _ := newTestCredential(t, "b")

	el := plaintextElement()
	ee, err := Encrypt(nil, el, []credential.Credential{credA}, EncryptOptions{})
	require.NoError(t, err)

	_, err = Decrypt(ee, privB, nil)
	require.Error(t, err)
}

func TestEncryptSkipsUnusableRecipientsWithLogging(t *testing.T) {
	_, good := newTestCredential(t, "good")
	bad := credential.Credential{KeyName: "bad", PublicKey: nil}

	logger := &testLogger{}
	el := plaintextElement()
	ee, err := Encrypt(logger, el, []credential.Credential{good, bad}, EncryptOptions{})
	require.NoError(t, err)
	require.Len(t, ee.EncryptedKeys, 1)
	require.NotEmpty(t, logger.lines)
}

func TestEncryptFailsWithNoUsableRecipients(t *testing.T) {
	bad := credential.Credential{KeyName: "bad", PublicKey: nil}
	el := plaintextElement()
	_, err := Encrypt(nil, el, []credential.Credential{bad}, EncryptOptions{})
	require.Error(t, err)
}
