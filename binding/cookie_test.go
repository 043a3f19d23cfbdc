package binding

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCorrelationIDRoundTrips(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "https://sp.example.org/acs", nil)

	SetCorrelationID(rec, req, "rs-1", "corr-1")
	setCookies := rec.Result().Cookies()
	require.Len(t, setCookies, 1)

	req2 := httptest.NewRequest("GET", "https://sp.example.org/acs", nil)
	req2.AddCookie(setCookies[0])
	rec2 := httptest.NewRecorder()
	got := CorrelationID(rec2, req2, "rs-1")
	require.Equal(t, "corr-1", got)
}

func TestCorrelationIDEmptyRelayStateIsNoop(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "https://sp.example.org/acs", nil)
	require.Equal(t, "", CorrelationID(rec, req, ""))
}

func TestCorrelationIDMissingCookieReturnsEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "https://sp.example.org/acs", nil)
	require.Equal(t, "", CorrelationID(rec, req, "rs-unset"))
}

func TestSetCorrelationIDGarbageCollectsExcessCookies(t *testing.T) {
	req := httptest.NewRequest("GET", "https://sp.example.org/acs", nil)
	for i := 0; i < maxCookies+5; i++ {
		req.AddCookie(&http.Cookie{Name: correlationCookiePrefix + strconv.Itoa(i), Value: "v"})
	}

	rec := httptest.NewRecorder()
	SetCorrelationID(rec, req, "rs-new", "corr-new")

	deleted := 0
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			deleted++
		}
	}
	require.Equal(t, 5, deleted)
}
