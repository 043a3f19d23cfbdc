// Package credential resolves usable keys/certificates out of metadata
// KeyDescriptors (§4.2 "resolve(credentialCriteria)", §4.4 Verification,
// §4.5 Encryption Engine) and caches them per role.
package credential

import (
	"crypto"
	"crypto/x509"
	"encoding/base64"
	"sync"

	saml "github.com/insaplace/opensamlcore"
)

// Usage selects which KeyDescriptor.Use value a Criteria is looking for.
type Usage string

const (
	UsageSigning    Usage = "signing"
	UsageEncryption Usage = "encryption"
)

// Credential is a resolved public key plus its certificate chain and the
// algorithm hints its KeyDescriptor advertised (EncryptionMethods).
type Credential struct {
	PublicKey         crypto.PublicKey
	Certificate       *x509.Certificate
	Certificates      []*x509.Certificate // full chain as presented
	KeyName           string
	EncryptionMethods []saml.EncryptionMethod
	Usage             Usage
}

// Criteria selects which credentials to resolve: entityID + role index +
// usage, matching MetadataCredentialCriteria (§4.2, §4.4).
type Criteria struct {
	EntityID string
	RoleType string // e.g. saml.RoleIDPSSO
	Usage    Usage
	KeyName  string // optional: narrow to a specific KeyInfo/KeyName
}

// RoleKeySource is implemented by anything that exposes a role's
// KeyDescriptors; metadata.EntityDescriptor role types satisfy it directly.
type RoleKeySource interface {
	Keys() []saml.KeyDescriptor
}

// Resolver resolves Criteria into zero or more Credentials, lazily
// constructed from KeyDescriptors and cached per role (§4.2).
type Resolver struct {
	mu    sync.Mutex
	cache map[string][]Credential
}

// NewResolver returns an empty, ready-to-use Resolver.
func NewResolver() *Resolver {
	return &Resolver{cache: make(map[string][]Credential)}
}

// Invalidate drops every cached entry for entityID. No metadata provider
// in this module calls it; it runs only when invoked directly.
func (r *Resolver) Invalidate(entityID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := entityID + "\x00"
	for k := range r.cache {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(r.cache, k)
		}
	}
}

func cacheKey(c Criteria) string {
	return c.EntityID + "\x00" + c.RoleType + "\x00" + string(c.Usage) + "\x00" + c.KeyName
}

// Resolve returns the credentials for criteria, building them from source's
// KeyDescriptors on first use and caching thereafter.
func (r *Resolver) Resolve(criteria Criteria, source RoleKeySource) ([]Credential, error) {
	key := cacheKey(criteria)

	r.mu.Lock()
	if cached, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	var out []Credential
	for _, kd := range source.Keys() {
		if !kd.UsableFor(string(criteria.Usage)) {
			continue
		}
		if criteria.KeyName != "" && kd.KeyInfo.KeyName != "" && kd.KeyInfo.KeyName != criteria.KeyName {
			continue
		}
		cred, err := fromKeyDescriptor(kd)
		if err != nil {
			continue // skip unparsable keys rather than fail the whole resolve
		}
		cred.Usage = criteria.Usage
		out = append(out, cred)
	}

	r.mu.Lock()
	r.cache[key] = out
	r.mu.Unlock()
	return out, nil
}

func fromKeyDescriptor(kd saml.KeyDescriptor) (Credential, error) {
	var certs []*x509.Certificate
	for _, xc := range kd.KeyInfo.X509Data.X509Certificates {
		der, err := base64.StdEncoding.DecodeString(collapseWhitespace(xc.Data))
		if err != nil {
			return Credential{}, err
		}
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return Credential{}, err
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return Credential{}, saml.New(saml.KindMetadata, "KeyDescriptor carries no usable X509Certificate")
	}
	return Credential{
		PublicKey:         certs[0].PublicKey,
		Certificate:       certs[0],
		Certificates:      certs,
		KeyName:           kd.KeyInfo.KeyName,
		EncryptionMethods: kd.EncryptionMethods,
	}, nil
}

// collapseWhitespace strips the whitespace/newlines XML pretty-printers
// commonly insert inside a base64 X509Certificate chardata blob.
func collapseWhitespace(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
