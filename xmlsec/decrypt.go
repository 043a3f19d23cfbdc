package xmlsec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"

	"github.com/beevik/etree"

	saml "github.com/insaplace/opensamlcore"
)

// EncryptedKeyResolver locates the EncryptedKey(s) relevant to a given
// EncryptedData, per §4.5 "Decryption": matching is normally done by
// comparing the data's KeyInfo/KeyName (the carried-key-name) against each
// candidate EncryptedKey's CarriedKeyName.
type EncryptedKeyResolver func(data saml.EncryptedData, candidates []saml.EncryptedKey) []saml.EncryptedKey

// DefaultEncryptedKeyResolver matches on carried-key-name when the
// EncryptedData carries one (the multi-recipient shape); when it doesn't
// (the single-recipient shape, §4.5) every candidate is considered, since
// there is exactly one key relevant by construction.
func DefaultEncryptedKeyResolver(data saml.EncryptedData, candidates []saml.EncryptedKey) []saml.EncryptedKey {
	carried := ""
	if data.KeyInfo != nil {
		carried = data.KeyInfo.KeyName
	}
	if carried == "" {
		return candidates
	}
	var matched []saml.EncryptedKey
	for _, k := range candidates {
		if k.CarriedKeyName == carried {
			matched = append(matched, k)
		}
	}
	return matched
}

// Decrypt reverses Encrypt: it unwraps the data-encryption key using priv
// against every EncryptedKey the resolver (defaulting to
// DefaultEncryptedKeyResolver when nil) returns, decrypts EncryptedData
// with the first key that unwraps successfully, and unmarshals the
// resulting plaintext as a single XML element (§4.5's "require that the
// resulting DOM fragment is a single element").
func Decrypt(ee *saml.EncryptedElement, priv *rsa.PrivateKey, resolve EncryptedKeyResolver) (*etree.Element, error) {
	if resolve == nil {
		resolve = DefaultEncryptedKeyResolver
	}
	candidates := resolve(ee.EncryptedData, ee.EncryptedKeys)
	if len(candidates) == 0 {
		return nil, saml.New(saml.KindSecurityPolicy, "decryption: no EncryptedKey matched this EncryptedData")
	}

	var dataKey []byte
	var lastErr error
	for _, ek := range candidates {
		key, err := unwrapKey(ek, priv)
		if err != nil {
			lastErr = err
			continue
		}
		dataKey = key
		break
	}
	if dataKey == nil {
		if lastErr == nil {
			lastErr = saml.New(saml.KindSecurityPolicy, "decryption: no candidate key unwrapped")
		}
		return nil, saml.Wrap(saml.KindSecurityPolicy, "decryption: failed to unwrap data-encryption key", lastErr)
	}

	plaintext, err := decryptAESCBC(dataKey, ee.EncryptedData.CipherData.CipherValue)
	if err != nil {
		return nil, saml.Wrap(saml.KindSecurityPolicy, "decryption: failed to decrypt EncryptedData", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(plaintext); err != nil {
		return nil, saml.Wrap(saml.KindSecurityPolicy, "decryption: decrypted content is not well-formed XML", err)
	}
	if len(doc.ChildElements()) != 1 {
		return nil, saml.New(saml.KindSecurityPolicy, "decryption: decrypted content does not contain a single root element")
	}
	return doc.Root(), nil
}

func unwrapKey(ek saml.EncryptedKey, priv *rsa.PrivateKey) ([]byte, error) {
	wrapped, err := base64.StdEncoding.DecodeString(ek.CipherData.CipherValue)
	if err != nil {
		return nil, err
	}
	switch ek.EncryptionMethod.Algorithm {
	case saml.KeyTransportRSA15:
		return rsa.DecryptPKCS1v15(nil, priv, wrapped)
	default:
		return rsa.DecryptOAEP(sha1.New(), nil, priv, wrapped, nil)
	}
}

func decryptAESCBC(key []byte, cipherValueB64 string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(cipherValueB64)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(raw) < aes.BlockSize || (len(raw)-aes.BlockSize)%aes.BlockSize != 0 {
		return nil, saml.New(saml.KindSecurityPolicy, "decryption: ciphertext is not a whole number of blocks")
	}
	iv, ct := raw[:aes.BlockSize], raw[aes.BlockSize:]
	plaintext := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ct)
	return pkcs7Unpad(plaintext)
}
