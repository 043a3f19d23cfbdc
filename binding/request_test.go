package binding

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPRequestURLStripsQueryAndFragment(t *testing.T) {
	req := httptest.NewRequest("GET", "https://sp.example.org/acs?foo=bar#frag", nil)
	h := NewHTTPRequest(req)
	require.Equal(t, "https://sp.example.org/acs", h.URL())
}

func TestHTTPRequestURLDefaultsSchemeFromTLS(t *testing.T) {
	req := httptest.NewRequest("GET", "/acs", nil)
	req.Host = "sp.example.org"
	h := NewHTTPRequest(req)
	require.True(t, strings.HasPrefix(h.URL(), "http://sp.example.org"))
}

func TestHTTPRequestFormValueParsesBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "https://sp.example.org/acs", strings.NewReader("SAMLResponse=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h := NewHTTPRequest(req)
	require.Equal(t, "abc", h.FormValue("SAMLResponse"))
}

func TestHTTPRequestClientCertificatesEmptyWithoutTLS(t *testing.T) {
	req := httptest.NewRequest("GET", "https://sp.example.org/acs", nil)
	h := NewHTTPRequest(req)
	require.Empty(t, h.ClientCertificates())
}

func TestHTTPRequestMethodAndRawQuery(t *testing.T) {
	req := httptest.NewRequest("GET", "https://sp.example.org/acs?a=b", nil)
	h := NewHTTPRequest(req)
	require.Equal(t, "GET", h.Method())
	require.Equal(t, "a=b", h.RawQuery())
}
