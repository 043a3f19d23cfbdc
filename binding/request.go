// Package binding implements the transport decode layer of §4.3: turning
// POST-form, redirect-URL, SOAP-body, and artifact-dereference transport
// carriers into the abstract message object the policy engine (§4.1)
// consumes, plus the SAML 2 request/response correlation cookie
// convention. Decoders never import net/http directly for the abstract
// policy.Request contract; HTTPRequest here is the one concrete adapter
// over *http.Request, matching §1's "abstract ProtocolRequest interface"
// framing and the crewjam/httperr convention the teacher's lineage uses
// for transport-boundary errors.
package binding

import (
	"crypto/x509"
	"net/http"

	"github.com/crewjam/httperr"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/policy"
)

// HTTPRequest adapts an *http.Request (plus any client certificates
// presented on the TLS connection) to policy.Request.
type HTTPRequest struct {
	Req   *http.Request
	Certs []*x509.Certificate

	formParsed bool
}

// NewHTTPRequest wraps r, pulling client certificates from its TLS
// connection state if present.
func NewHTTPRequest(r *http.Request) *HTTPRequest {
	hr := &HTTPRequest{Req: r}
	if r.TLS != nil {
		hr.Certs = r.TLS.PeerCertificates
	}
	return hr
}

func (h *HTTPRequest) Method() string    { return h.Req.Method }
func (h *HTTPRequest) RawQuery() string  { return h.Req.URL.RawQuery }

// URL reconstructs the URL the peer would have built Recipient/Destination
// against: scheme + host (as seen by this process; callers behind a proxy
// should set Req.URL.Scheme/Host via middleware before decoding) + path,
// query string excluded (§4.1 Bearer rule strips the query separately).
func (h *HTTPRequest) URL() string {
	u := *h.Req.URL
	u.RawQuery = ""
	u.Fragment = ""
	if u.Scheme == "" {
		if h.Req.TLS != nil {
			u.Scheme = "https"
		} else {
			u.Scheme = "http"
		}
	}
	if u.Host == "" {
		u.Host = h.Req.Host
	}
	return u.String()
}

func (h *HTTPRequest) FormValue(name string) string {
	if !h.formParsed {
		_ = h.Req.ParseForm()
		h.formParsed = true
	}
	return h.Req.FormValue(name)
}

func (h *HTTPRequest) ClientCertificates() [][]byte {
	out := make([][]byte, len(h.Certs))
	for i, c := range h.Certs {
		out[i] = c.Raw
	}
	return out
}

var _ policy.Request = (*HTTPRequest)(nil)

// wrapTransportError annotates a low-level transport/format failure as a
// saml.Error of KindBinding and, for HTTP-facing callers, as an
// httperr.Error carrying the appropriate status code (§7 "decoders wrap
// transport errors as Binding").
func wrapTransportError(status int, msg string, cause error) error {
	inner := saml.Wrap(saml.KindBinding, msg, cause)
	return httperr.Value{Err: inner, StatusCode: status}
}
