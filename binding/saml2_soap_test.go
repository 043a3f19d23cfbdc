package binding

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/insaplace/opensamlcore/policy"
)

func soapEnvelope(inner string) string {
	return `<?xml version="1.0"?>
<Envelope xmlns="http://schemas.xmlsoap.org/soap/envelope/">
  <Header/>
  <Body>` + inner + `</Body>
</Envelope>`
}

func TestDecodeSAML2SOAPParsesWrappedResponse(t *testing.T) {
	p := policy.New()
	req := &fakeRequest{method: "POST"}
	body := []byte(soapEnvelope(responseXMLTemplate))
	res, err := DecodeSAML2SOAP(p, req, "", "", "text/xml", body)
	require.NoError(t, err)
	require.Equal(t, "https://idp.example.org", res.Issuer.Value)
}

func TestDecodeSAML2SOAPRejectsWrongContentType(t *testing.T) {
	p := policy.New()
	req := &fakeRequest{method: "POST"}
	_, err := DecodeSAML2SOAP(p, req, "", "", "application/json", []byte("{}"))
	require.Error(t, err)
}

func TestDecodeSAML2SOAPAcceptsPAOSContentType(t *testing.T) {
	p := policy.New()
	req := &fakeRequest{method: "POST"}
	body := []byte(soapEnvelope(responseXMLTemplate))
	res, err := DecodeSAML2SOAP(p, req, "", "", "application/vnd.paos+xml", body)
	require.NoError(t, err)
	require.Equal(t, "https://idp.example.org", res.Issuer.Value)
}

func TestDecodeSAML2SOAPRejectsMalformedEnvelope(t *testing.T) {
	p := policy.New()
	req := &fakeRequest{method: "POST"}
	_, err := DecodeSAML2SOAP(p, req, "", "", "text/xml", []byte("not xml"))
	require.Error(t, err)
}
