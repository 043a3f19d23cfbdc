package binding

import "net/url"

// fakeRequest is a minimal policy.Request for exercising decoders without
// pulling in net/http.
type fakeRequest struct {
	method string
	url    string
	query  string
	form   url.Values
	certs  [][]byte
}

func (f *fakeRequest) Method() string   { return f.method }
func (f *fakeRequest) URL() string      { return f.url }
func (f *fakeRequest) RawQuery() string { return f.query }
func (f *fakeRequest) FormValue(name string) string {
	if f.form == nil {
		return ""
	}
	return f.form.Get(name)
}
func (f *fakeRequest) ClientCertificates() [][]byte { return f.certs }
