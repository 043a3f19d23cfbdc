package binding

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

const correlationCookiePrefix = "_opensaml_req_"

// maxCookies bounds how many correlation cookies a single response keeps
// around at once (§4.3 "garbage-collects... keep up to maxCookies = 20").
const maxCookies = 20

// CorrelationID looks up the "_opensaml_req_<urlencoded relayState>" cookie
// on r, URL-decodes its value, and instructs w to delete it — the decoder
// calls this once per request and feeds the result into
// policy.CorrelationID (§4.3 "SAML 2 request/response correlation cookie").
// An empty relayState or a missing cookie both return "".
func CorrelationID(w http.ResponseWriter, r *http.Request, relayState string) string {
	if relayState == "" {
		return ""
	}
	name := correlationCookiePrefix + url.QueryEscape(relayState)
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	value, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	})
	return value
}

// SetCorrelationID sets the correlation cookie an SP-initiated request
// expects to read back via CorrelationID, then runs the garbage collection
// pass over existing correlation cookies.
func SetCorrelationID(w http.ResponseWriter, r *http.Request, relayState, correlationID string) {
	if relayState == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     correlationCookiePrefix + url.QueryEscape(relayState),
		Value:    url.QueryEscape(correlationID),
		Path:     "/",
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	})
	gcCorrelationCookies(w, r)
}

// gcCorrelationCookies walks every cookie whose name starts with the
// correlation prefix in reverse-name order, keeping up to maxCookies and
// deleting the remainder (§4.3).
func gcCorrelationCookies(w http.ResponseWriter, r *http.Request) {
	var names []string
	for _, c := range r.Cookies() {
		if strings.HasPrefix(c.Name, correlationCookiePrefix) {
			names = append(names, c.Name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	for i := maxCookies; i < len(names); i++ {
		http.SetCookie(w, &http.Cookie{
			Name:     names[i],
			Value:    "",
			MaxAge:   -1,
			Path:     "/",
			SameSite: http.SameSiteNoneMode,
			Secure:   true,
		})
	}
}
