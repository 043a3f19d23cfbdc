package xmlsec

import (
	"encoding/xml"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/credential"
	"github.com/insaplace/opensamlcore/internal/xmlutil"
)

type signableProbe struct {
	XMLName   xml.Name
	ID        string         `xml:"ID,attr"`
	Signature *saml.Signature `xml:"Signature"`
}

func unsignedElement(id string) *etree.Element {
	doc := etree.NewDocument()
	root := doc.CreateElement("Assertion")
	root.CreateAttr("ID", id)
	root.CreateElement("Subject").SetText("bob@example.org")
	return root
}

// §8 universal law: signature round-trip — a freshly signed element
// verifies against the signer's own certificate.
func TestSignVerifyRoundTrip(t *testing.T) {
	priv, cred := newTestCredential(t, "signer")

	el := unsignedElement("_sig001")
	signer := &Signer{Key: priv, Cert: cred.Certificate}
	signed, err := signer.SignEnveloped(el, "")
	require.NoError(t, err)

	doc := etree.NewDocument()
	doc.SetRoot(signed)
	raw, err := doc.WriteToBytes()
	require.NoError(t, err)

	var probe signableProbe
	require.NoError(t, xmlutil.Unmarshal(raw, &probe))
	require.NotNil(t, probe.Signature)

	v := NewVerifier()
	match, err := v.VerifyEnveloped(signed, "_sig001", probe.Signature, []credential.Credential{cred})
	require.NoError(t, err)
	require.Equal(t, "signer", match.KeyName)
}

func TestVerifyEnvelopedRejectsWrongCredential(t *testing.T) {
	priv, cred := newTestCredential(t, "signer")
	_, other := newTestCredential(t, "other")

	el := unsignedElement("_sig002")
	signer := &Signer{Key: priv, Cert: cred.Certificate}
	signed, err := signer.SignEnveloped(el, "")
	require.NoError(t, err)

	doc := etree.NewDocument()
	doc.SetRoot(signed)
	raw, err := doc.WriteToBytes()
	require.NoError(t, err)

	var probe signableProbe
	require.NoError(t, xmlutil.Unmarshal(raw, &probe))

	v := NewVerifier()
	_, err = v.VerifyEnveloped(signed, "_sig002", probe.Signature, []credential.Credential{other})
	require.Error(t, err)
}

func TestVerifyEnvelopedTriesEachCandidateInTurn(t *testing.T) {
	priv, cred := newTestCredential(t, "signer")
	_, decoy := newTestCredential(t, "decoy")

	el := unsignedElement("_sig003")
	signer := &Signer{Key: priv, Cert: cred.Certificate}
	signed, err := signer.SignEnveloped(el, "")
	require.NoError(t, err)

	doc := etree.NewDocument()
	doc.SetRoot(signed)
	raw, err := doc.WriteToBytes()
	require.NoError(t, err)

	var probe signableProbe
	require.NoError(t, xmlutil.Unmarshal(raw, &probe))

	v := NewVerifier()
	match, err := v.VerifyEnveloped(signed, "_sig003", probe.Signature, []credential.Credential{decoy, cred})
	require.NoError(t, err)
	require.Equal(t, "signer", match.KeyName)
}
