package policy

import (
	"encoding/base64"
	"net/http"
	"strings"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/credential"
	"github.com/insaplace/opensamlcore/xmlsec"
)

// SimpleSigningRule verifies the detached HTTP-Redirect/POST-SimpleSign
// signature by reconstructing the signed blob exactly as the peer built it
// and checking it against the issuer's signing credentials (§4.1 table,
// "SimpleSigning blob reconstruction").
type SimpleSigningRule struct {
	ErrorFatal bool
	Resolver   *credential.Resolver

	// MessageParam names the form/query field carrying the base64 SAML
	// message ("SAMLRequest" or "SAMLResponse"); defaults to trying both.
	MessageParam string
}

func (r *SimpleSigningRule) Evaluate(msg *Message, req Request, p *Policy) (bool, error) {
	sigAlg := req.FormValue("SigAlg")
	sigB64 := req.FormValue("Signature")
	if sigAlg == "" || sigB64 == "" {
		return false, nil
	}

	signature, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return false, r.fail(saml.Wrap(saml.KindSecurityPolicy, "invalid base64 Signature parameter", err))
	}

	var blob []byte
	if req.Method() == http.MethodGet {
		blob = redirectBlob(req.RawQuery(), r.MessageParam)
	} else {
		blob = postBlob(req, r.MessageParam)
	}
	if blob == nil {
		return false, nil
	}

	roleSource, ok := p.IssuerRole.(credential.RoleKeySource)
	if !ok || p.Issuer == nil {
		return false, r.fail(saml.New(saml.KindSecurityPolicy, "cannot verify simple signature: issuer role credentials not resolved"))
	}
	resolver := r.Resolver
	if resolver == nil {
		resolver = credential.NewResolver()
	}
	candidates, err := resolver.Resolve(credential.Criteria{EntityID: p.Issuer.Value, Usage: credential.UsageSigning}, roleSource)
	if err != nil {
		return false, r.fail(err)
	}

	if _, err := xmlsec.VerifyBlob(sigAlg, blob, signature, candidates); err != nil {
		return false, r.fail(err)
	}

	p.Authenticated = true
	return true, nil
}

func (r *SimpleSigningRule) fail(err error) error {
	if r.ErrorFatal {
		return err
	}
	return nil
}

// redirectBlob builds the GET-binding signed blob: the raw (percent-encoded)
// SAMLRequest/SAMLResponse, RelayState, and SigAlg substrings of rawQuery,
// in that order, joined by "&" — never re-encoded (§4.1).
func redirectBlob(rawQuery, preferredParam string) []byte {
	names := []string{"SAMLRequest", "SAMLResponse"}
	if preferredParam != "" {
		names = []string{preferredParam}
	}

	var parts []string
	for _, name := range names {
		if pair, ok := rawQueryParam(rawQuery, name); ok {
			parts = append(parts, pair)
			break
		}
	}
	if len(parts) == 0 {
		return nil
	}
	if pair, ok := rawQueryParam(rawQuery, "RelayState"); ok {
		parts = append(parts, pair)
	}
	pair, ok := rawQueryParam(rawQuery, "SigAlg")
	if !ok {
		return nil
	}
	parts = append(parts, pair)

	return []byte(strings.Join(parts, "&"))
}

// rawQueryParam returns the exact "name=value" substring of rawQuery for
// name, preserving its original percent-encoding, or ok=false if absent.
func rawQueryParam(rawQuery, name string) (string, bool) {
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == name {
			return pair, true
		}
		if strings.HasPrefix(pair, name+"=") {
			return pair, true
		}
	}
	return "", false
}

// postBlob builds the POST-binding signed blob: the base64-decoded bytes of
// SAMLRequest/SAMLResponse, then the raw RelayState and SigAlg form values,
// each reassembled with its own field name (§4.1).
func postBlob(req Request, preferredParam string) []byte {
	names := []string{"SAMLRequest", "SAMLResponse"}
	if preferredParam != "" {
		names = []string{preferredParam}
	}

	var field, value string
	for _, name := range names {
		if v := req.FormValue(name); v != "" {
			field, value = name, v
			break
		}
	}
	if field == "" {
		return nil
	}
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil
	}

	blob := []byte(field + "=")
	blob = append(blob, decoded...)
	if relay := req.FormValue("RelayState"); relay != "" {
		blob = append(blob, []byte("&RelayState="+relay)...)
	}
	sigAlg := req.FormValue("SigAlg")
	blob = append(blob, []byte("&SigAlg="+sigAlg)...)
	return blob
}
