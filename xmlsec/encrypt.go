package xmlsec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"

	"github.com/beevik/etree"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/credential"
)

// EncryptOptions controls algorithm selection for Encrypt (§4.5). Zero
// value picks the defaults named in the spec: AES-256-CBC for the bulk
// data key, RSA-OAEP for key transport.
type EncryptOptions struct {
	DataAlgorithm        string
	KeyTransportAlgorithm string
}

func (o EncryptOptions) dataAlgorithm() string {
	if o.DataAlgorithm != "" {
		return o.DataAlgorithm
	}
	return saml.BlockEncryptionAES256CBC
}

// keyTransportFor picks the key-transport algorithm for a single
// recipient: the one stated by the role's EncryptionMethod list when the
// recipient's credential advertises one, else the option override, else
// RSA-OAEP (§4.5 "Single recipient").
func keyTransportFor(o EncryptOptions, cred credential.Credential) string {
	for _, m := range cred.EncryptionMethods {
		switch m.Algorithm {
		case saml.KeyTransportRSAOAEPMGF1P, saml.KeyTransportRSA15:
			return m.Algorithm
		}
	}
	if o.KeyTransportAlgorithm != "" {
		return o.KeyTransportAlgorithm
	}
	return saml.KeyTransportRSAOAEPMGF1P
}

// Encrypt produces an EncryptedElementType wrapping el for one or more
// recipients (§4.5). A single recipient gets a plain EncryptedData plus
// its own EncryptedKey; two or more recipients share one EncryptedData
// under a randomly generated data-encryption key, each wrapped separately
// per recipient, with a shared CarriedKeyName/ReferenceList linking the
// EncryptedKeys back to the EncryptedData (§4.5 "Multi-recipient").
//
// Recipients whose credential carries no usable public key are skipped
// with a warning logged to logger, rather than failing the whole
// operation, matching step 4 of the multi-recipient algorithm.
func Encrypt(logger interface{ Printf(string, ...interface{}) }, el *etree.Element, recipients []credential.Credential, opts EncryptOptions) (*saml.EncryptedElement, error) {
	usable := make([]credential.Credential, 0, len(recipients))
	for _, r := range recipients {
		if pub, ok := r.PublicKey.(*rsa.PublicKey); ok && pub != nil {
			usable = append(usable, r)
			continue
		}
		if logger != nil {
			logger.Printf("xmlsec: skipping recipient with no usable RSA encryption key (keyname=%q)", r.KeyName)
		}
	}
	if len(usable) == 0 {
		return nil, saml.New(saml.KindSecurityPolicy, "encryption: no recipient supplied a usable encryption credential")
	}

	plaintext := []byte(elementToString(el))
	dataAlg := opts.dataAlgorithm()

	dataKey, iv, ciphertext, err := encryptAESCBC(plaintext, dataAlg)
	if err != nil {
		return nil, saml.Wrap(saml.KindSecurityPolicy, "encryption: failed to encrypt data", err)
	}

	encID := saml.GenerateIdentifier()
	encData := saml.EncryptedData{
		ID:               encID,
		Type:             "http://www.w3.org/2001/04/xmlenc#Element",
		EncryptionMethod: saml.EncryptionMethod{Algorithm: dataAlg},
		CipherData:       saml.CipherData{CipherValue: base64.StdEncoding.EncodeToString(append(iv, ciphertext...))},
	}

	multi := len(usable) > 1
	carriedKeyName := ""
	if multi {
		carriedKeyName = saml.GenerateCarriedKeyName()
		encData.KeyInfo = &saml.KeyInfo{KeyName: carriedKeyName}
	}

	keys := make([]saml.EncryptedKey, 0, len(usable))
	for _, cred := range usable {
		transportAlg := keyTransportFor(opts, cred)
		wrapped, err := wrapKey(dataKey, cred.Certificate, transportAlg)
		if err != nil {
			if logger != nil {
				logger.Printf("xmlsec: skipping recipient %q: %v", cred.KeyName, err)
			}
			continue
		}
		ek := saml.EncryptedKey{
			Recipient:        cred.KeyName,
			EncryptionMethod: saml.EncryptionMethod{Algorithm: transportAlg},
			CipherData:       saml.CipherData{CipherValue: base64.StdEncoding.EncodeToString(wrapped)},
		}
		if multi {
			ek.CarriedKeyName = carriedKeyName
			ek.ReferenceList = &saml.ReferenceList{DataReferences: []saml.DataReference{{URI: "#" + encID}}}
		}
		keys = append(keys, ek)
	}
	if len(keys) == 0 {
		return nil, saml.New(saml.KindSecurityPolicy, "encryption: every recipient credential failed to wrap the data key")
	}

	return &saml.EncryptedElement{EncryptedData: encData, EncryptedKeys: keys}, nil
}

func elementToString(el *etree.Element) string {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	s, _ := doc.WriteToString()
	return s
}

// encryptAESCBC generates a fresh random key sized for alg, encrypts
// plaintext under AES-CBC with PKCS#7 padding, and returns the key, a
// random IV, and the ciphertext. The wire CipherValue is IV || ciphertext,
// per the XML-Encryption block-cipher convention.
func encryptAESCBC(plaintext []byte, alg string) (key, iv, ciphertext []byte, err error) {
	keySize := 32
	switch alg {
	case saml.BlockEncryptionAES128CBC:
		keySize = 16
	case saml.BlockEncryptionAES192CBC:
		keySize = 24
	case saml.BlockEncryptionAES256CBC:
		keySize = 32
	}
	key = make([]byte, keySize)
	if _, err = rand.Read(key); err != nil {
		return nil, nil, nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, nil, err
	}
	iv = make([]byte, aes.BlockSize)
	if _, err = rand.Read(iv); err != nil {
		return nil, nil, nil, err
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext = make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return key, iv, ciphertext, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+pad)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, saml.New(saml.KindSecurityPolicy, "decryption: empty plaintext block")
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > len(data) {
		return nil, saml.New(saml.KindSecurityPolicy, "decryption: invalid PKCS#7 padding")
	}
	return data[:len(data)-pad], nil
}

// wrapKey wraps dataKey under cert's RSA public key using the named
// key-transport algorithm.
func wrapKey(dataKey []byte, cert *x509.Certificate, alg string) ([]byte, error) {
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, saml.New(saml.KindSecurityPolicy, "encryption: recipient certificate does not carry an RSA key")
	}
	switch alg {
	case saml.KeyTransportRSA15:
		return rsa.EncryptPKCS1v15(rand.Reader, pub, dataKey)
	default:
		return rsa.EncryptOAEP(sha1.New(), rand.Reader, pub, dataKey, nil)
	}
}
