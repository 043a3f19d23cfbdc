package xmlsec

import (
	"strings"

	"github.com/beevik/etree"

	saml "github.com/insaplace/opensamlcore"
)

// ContentReference describes the Reference a signing operation should
// produce (§4.4 "Content reference construction (signing path)"): digest
// algorithm SHA-256 by default (SHA-1 fallback), transforms
// (enveloped-signature, exclusive-c14n), and the set of namespace prefixes
// that must be pinned because they're referenced from places exclusive-c14n
// can't see (xsi:type values, QName text/attribute content).
type ContentReference struct {
	URI              string
	DigestAlgorithm  string
	Transforms       []string
	InclusivePrefixes []string
}

// DefaultSHA256 digest, falling back to SHA-1 when the caller's environment
// lacks SHA-2 (sha256Available is a hook for that fallback; this module
// always has crypto/sha256, so it always returns true, but the fallback
// path is preserved per §4.4 to document the original's behavior).
func sha256Available() bool { return true }

// NewContentReference builds a ContentReference for the object identified
// by id (empty id means "whole document").
func NewContentReference(id string, el *etree.Element) *ContentReference {
	digest := saml.DigestSHA256
	if !sha256Available() {
		digest = saml.DigestSHA1
	}
	ref := &ContentReference{
		DigestAlgorithm: digest,
		Transforms:      []string{saml.TransformEnvelopedSignature, saml.TransformExclusiveC14N},
	}
	if id != "" {
		ref.URI = "#" + id
	}
	ref.InclusivePrefixes = pinnedPrefixes(el)
	return ref
}

// pinnedPrefixes computes the set of namespace prefixes referenced by
// "invisibly used" namespace-qualified content — xsi:type attributes (the
// xsi prefix and the prefix of the type value), and element/attribute text
// that is itself a QName — so they can
// be declared on the object root and added to the canonicalization
// transform's inclusive-namespaces list (§4.4). The sentinel prefix
// "default" stands for the unprefixed xmlns default-namespace declaration.
func pinnedPrefixes(el *etree.Element) []string {
	if el == nil {
		return nil
	}
	seen := make(map[string]bool)
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		if t := e.SelectAttrValue("xsi:type", ""); t != "" {
			seen["xsi"] = true
			addQNamePrefix(seen, t)
		}
		for _, attr := range e.Attr {
			if looksLikeQName(attr.Value) {
				addQNamePrefix(seen, attr.Value)
			}
		}
		if looksLikeQName(strings.TrimSpace(e.Text())) {
			addQNamePrefix(seen, strings.TrimSpace(e.Text()))
		}
		for _, child := range e.ChildElements() {
			walk(child)
		}
	}
	walk(el)

	prefixes := make([]string, 0, len(seen))
	for p := range seen {
		prefixes = append(prefixes, p)
	}
	return prefixes
}

func looksLikeQName(s string) bool {
	if s == "" {
		return false
	}
	i := strings.IndexByte(s, ':')
	if i <= 0 || i == len(s)-1 {
		return false
	}
	prefix := s[:i]
	for _, r := range prefix {
		if !(r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

func addQNamePrefix(seen map[string]bool, qname string) {
	i := strings.IndexByte(qname, ':')
	if i <= 0 {
		seen["default"] = true
		return
	}
	seen[qname[:i]] = true
}

// PinPrefixes declares each of ref.InclusivePrefixes on root (if not
// already declared there) using the namespace URI it resolves to in the
// context of the original element scope, per §4.4's pinning algorithm.
// namespaceOf resolves a prefix to a URI by walking up from src.
func PinPrefixes(ref *ContentReference, root, src *etree.Element, namespaceOf func(prefix string, scope *etree.Element) string) {
	for _, prefix := range ref.InclusivePrefixes {
		if prefix == "default" {
			if root.SelectAttr("xmlns") != nil {
				continue
			}
			if uri := namespaceOf("", src); uri != "" {
				root.CreateAttr("xmlns", uri)
			}
			continue
		}
		attrName := "xmlns:" + prefix
		if root.SelectAttr(attrName) != nil {
			continue
		}
		if uri := namespaceOf(prefix, src); uri != "" {
			root.CreateAttr(attrName, uri)
		}
	}
}
