package saml

import "github.com/dchest/uniuri"

// idHexChars is the charset generateIdentifier draws from: SAML identifiers
// must start with a letter or underscore (xsd:ID), so the leading "_" is
// fixed and the remainder is lowercase hex.
var idHexChars = []byte("0123456789abcdef")

// GenerateIdentifier returns a new message/element identifier of the form
// "_" followed by 32 lowercase hex digits (§6, §8 scenario 4), suitable for
// use as an Assertion, Request, or Response ID.
func GenerateIdentifier() string {
	return "_" + uniuri.NewLenChars(32, idHexChars)
}

// GenerateCarriedKeyName returns an identifier used to link an EncryptedData
// element to the EncryptedKey elements that carry its key, per §4.5 step 2.
func GenerateCarriedKeyName() string {
	return uniuri.NewLen(24)
}
