package saml

import (
	"crypto/sha1"
	"encoding/base64"
)

// Artifact type codes, §3/§6: the first two bytes of the raw (pre-base64)
// artifact select the type-specific parser.
const (
	ArtifactTypeSAML1       uint16 = 0x0001
	ArtifactTypeSAML1WithSource uint16 = 0x0002
	ArtifactTypeSAML2       uint16 = 0x0004
)

// Artifact is the decoded form of a SAMLArtifact (§3, §8 scenario 3).
// Raw is the complete byte sequence, type code included, so that
// ParseArtifact(a.Encode()) == a byte-wise (§8 Artifact round-trip).
type Artifact struct {
	Type   uint16
	Index  uint16 // SourceID/endpoint index, second 2-byte field of every artifact type
	Source string // SourceID (type 1) or source location/entityID hash (type 2/4)
	Handle []byte // SAML1: 20-byte assertion handle; SAML2: remaining bytes
	Raw    []byte
}

// ParseArtifact base64-decodes wire and dispatches on the first two bytes
// to the type-specific layout (§8 scenario 3):
//
//	type 0x0001: 2 bytes type || 2 bytes SourceID index || 20 bytes SourceID || 20 bytes handle
//	type 0x0002: 2 bytes type || 2 bytes endpoint index || remainder: source location URL || 20 bytes handle
//	type 0x0004: 2 bytes type || 2 bytes endpoint index || 20 bytes SHA-1(SourceID entityID) || 20 bytes handle
func ParseArtifact(wire string) (*Artifact, error) {
	raw, err := base64.StdEncoding.DecodeString(wire)
	if err != nil {
		return nil, Wrap(KindArtifact, "invalid base64 encoding", err)
	}
	if len(raw) < 2 {
		return nil, New(KindArtifact, "artifact too short to contain a type code")
	}
	typ := uint16(raw[0])<<8 | uint16(raw[1])

	if len(raw) < 4 {
		return nil, New(KindArtifact, "artifact too short to contain an index")
	}
	a := &Artifact{Type: typ, Index: uint16(raw[2])<<8 | uint16(raw[3]), Raw: raw}
	switch typ {
	case ArtifactTypeSAML1:
		if len(raw) != 2+2+20+20 {
			return nil, New(KindArtifact, "malformed type 0x0001 artifact length")
		}
		a.Source = base64.StdEncoding.EncodeToString(raw[4:24])
		a.Handle = raw[24:44]
	case ArtifactTypeSAML1WithSource:
		if len(raw) <= 2+2+20 {
			return nil, New(KindArtifact, "malformed type 0x0002 artifact length")
		}
		a.Handle = raw[len(raw)-20:]
		a.Source = string(raw[4 : len(raw)-20])
	case ArtifactTypeSAML2:
		if len(raw) != 2+2+20+20 {
			return nil, New(KindArtifact, "malformed type 0x0004 artifact length")
		}
		a.Source = base64.StdEncoding.EncodeToString(raw[4:24])
		a.Handle = raw[24:44]
	default:
		return nil, Newf(KindArtifact, "unrecognized artifact type code 0x%04x", typ)
	}
	return a, nil
}

// Encode base64-encodes the raw artifact bytes, inverse of ParseArtifact.
func (a *Artifact) Encode() string {
	return base64.StdEncoding.EncodeToString(a.Raw)
}

// SourceIDHash computes SHA-1(entityID), the fallback artifact source used
// when no explicit SourceID extension is present (§3 Invariants, §4.2
// Indexing).
func SourceIDHash(entityID string) [20]byte {
	return sha1.Sum([]byte(entityID))
}

// SourceIDHashString is SourceIDHash base64-encoded, the form stored in a
// provider's sources index.
func SourceIDHashString(entityID string) string {
	h := SourceIDHash(entityID)
	return base64.StdEncoding.EncodeToString(h[:])
}
