package binding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/policy"
)

type fakeSAML1ArtifactResolver struct {
	resp *saml.SAML1Response
	err  error
}

func (r *fakeSAML1ArtifactResolver) ResolveSAML2(ctx context.Context, endpoint string, resolve *saml.ArtifactResolve) (*saml.ArtifactResponse, error) {
	return nil, saml.New(saml.KindBinding, "not implemented")
}
func (r *fakeSAML1ArtifactResolver) ResolveSAML1(ctx context.Context, endpoint, artifact string) (*saml.SAML1Response, error) {
	return r.resp, r.err
}

func TestDecodeSAML1ArtifactDereferencesAndParses(t *testing.T) {
	entity := &saml.EntityDescriptor{
		EntityID: "https://idp.example.org",
		IDPSSODescriptors: []saml.IDPSSODescriptor{{
			SSODescriptor: saml.SSODescriptor{
				ArtifactResolutionServices: []saml.IndexedEndpoint{{Binding: "urn:oasis:names:tc:SAML:1.0:bindings:SOAP-binding", Location: "https://idp.example.org/ars", Index: 0, IsDefault: boolPtr(true)}},
			},
		}},
	}
	prov := &fakeArtifactProvider{entity: entity}
	p := policy.New()
	p.MetadataProvider = prov

	resp := &saml.SAML1Response{ResponseID: "_resp1", Assertions: []saml.SAML1Assertion{{AssertionID: "_a1", Issuer: "https://idp.example.org"}}}
	resolver := &fakeSAML1ArtifactResolver{resp: resp}
	req := &fakeRequest{form: map[string][]string{"SAMLart": {buildArtifactWire("https://idp.example.org", 0)}}}

	res, err := DecodeSAML1Artifact(p, req, resolver, nil, "ctx")
	require.NoError(t, err)
	require.Equal(t, "https://idp.example.org", res.Issuer.Value)
}

func TestDecodeSAML1ArtifactRequiresSAMLart(t *testing.T) {
	p := policy.New()
	req := &fakeRequest{}
	_, err := DecodeSAML1Artifact(p, req, nil, nil, "ctx")
	require.Error(t, err)
}

func TestDecodeSAML1ArtifactRejectsReplay(t *testing.T) {
	cache := newFakeReplayCache(false)
	p := policy.New()
	req := &fakeRequest{form: map[string][]string{"SAMLart": {buildArtifactWire("https://idp.example.org", 0)}}}
	_, err := DecodeSAML1Artifact(p, req, nil, cache, "ctx")
	require.Error(t, err)
}
