package saml

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
	"gotest.tools/assert"
)

// §8 scenario 3: artifact type dispatch.
func TestParseArtifactTypeDispatch(t *testing.T) {
	saml2Wire := base64.StdEncoding.EncodeToString(append([]byte{0x00, 0x04, 0x00, 0x00}, make([]byte, 40)...))
	a, err := ParseArtifact(saml2Wire)
	require.NoError(t, err)
	require.Equal(t, ArtifactTypeSAML2, a.Type)

	saml1Wire := base64.StdEncoding.EncodeToString(append([]byte{0x00, 0x01, 0x00, 0x00}, make([]byte, 40)...))
	a, err = ParseArtifact(saml1Wire)
	require.NoError(t, err)
	require.Equal(t, ArtifactTypeSAML1, a.Type)
}

// §8 universal law: artifact round-trip.
func TestArtifactRoundTrip(t *testing.T) {
	raw := append([]byte{0x00, 0x04, 0x00, 0x07}, make([]byte, 40)...)
	for i := range raw[4:] {
		raw[4+i] = byte(i)
	}
	wire := base64.StdEncoding.EncodeToString(raw)

	a, err := ParseArtifact(wire)
	require.NoError(t, err)
	require.Equal(t, wire, a.Encode())

	b, err := ParseArtifact(a.Encode())
	require.NoError(t, err)
	assert.DeepEqual(t, a.Raw, b.Raw)
}

func TestParseArtifactUnknownType(t *testing.T) {
	wire := base64.StdEncoding.EncodeToString([]byte{0x00, 0x09, 0x00, 0x00})
	_, err := ParseArtifact(wire)
	require.Error(t, err)
}

func TestParseArtifactInvalidBase64(t *testing.T) {
	_, err := ParseArtifact("not-base64!!!")
	require.Error(t, err)
}

func TestSourceIDHashStringMatchesSHA1(t *testing.T) {
	got := SourceIDHashString("https://idp.example.org/idp")
	sum := SourceIDHash("https://idp.example.org/idp")
	require.Equal(t, base64.StdEncoding.EncodeToString(sum[:]), got)
}
