package binding

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"time"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/internal/xmlutil"
	"github.com/insaplace/opensamlcore/metadata"
	"github.com/insaplace/opensamlcore/policy"
	"github.com/insaplace/opensamlcore/replay"
)

// artifactReplayWindow bounds how long a dereferenced artifact's wire value
// is remembered in the replay cache (§9 Open Questions: artifact-token
// replay has no natural issueInstant to key expiration off of, unlike
// MessageFlowRule's replay check).
const artifactReplayWindow = 5 * time.Minute

// ArtifactResolver SOAP-dereferences a SAML artifact against an
// ArtifactResolutionService endpoint (§4.3 table: "call the caller-supplied
// ArtifactResolver to SOAP-dereference"). Implementations typically POST an
// ArtifactResolve envelope and unmarshal the ArtifactResponse back.
type ArtifactResolver interface {
	ResolveSAML2(ctx context.Context, endpoint string, resolve *saml.ArtifactResolve) (*saml.ArtifactResponse, error)
	ResolveSAML1(ctx context.Context, endpoint string, artifact string) (*saml.SAML1Response, error)
}

// HTTPArtifactResolver is the default ArtifactResolver: a SOAP 1.1 POST
// over net/http.
type HTTPArtifactResolver struct {
	Client *http.Client
}

func (r *HTTPArtifactResolver) client() *http.Client {
	if r.Client != nil {
		return r.Client
	}
	return http.DefaultClient
}

func (r *HTTPArtifactResolver) ResolveSAML2(ctx context.Context, endpoint string, resolve *saml.ArtifactResolve) (*saml.ArtifactResponse, error) {
	body, err := xml.Marshal(resolve)
	if err != nil {
		return nil, saml.Wrap(saml.KindBinding, "failed to marshal ArtifactResolve", err)
	}
	respBody, err := r.soapRoundTrip(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}
	var env saml.SOAPEnvelope
	if err := xmlutil.Unmarshal(respBody, &env); err != nil {
		return nil, saml.Wrap(saml.KindBinding, "failed to parse ArtifactResolve SOAP response envelope", err)
	}
	var ar saml.ArtifactResponse
	if err := xmlutil.Unmarshal(env.Body.InnerXML, &ar); err != nil {
		return nil, saml.Wrap(saml.KindBinding, "failed to parse ArtifactResponse", err)
	}
	return &ar, nil
}

func (r *HTTPArtifactResolver) ResolveSAML1(ctx context.Context, endpoint, artifact string) (*saml.SAML1Response, error) {
	request := saml.SAML1Request{
		RequestID:          saml.GenerateIdentifier(),
		IssueInstant:       saml.TimeNow(),
		AssertionArtifacts: []string{artifact},
	}
	body, err := xml.Marshal(&request)
	if err != nil {
		return nil, saml.Wrap(saml.KindBinding, "failed to marshal SAML 1 Request", err)
	}
	respBody, err := r.soapRoundTrip(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}
	var env saml.SOAPEnvelope
	if err := xmlutil.Unmarshal(respBody, &env); err != nil {
		return nil, saml.Wrap(saml.KindBinding, "failed to parse SAML 1 artifact SOAP response envelope", err)
	}
	var resp saml.SAML1Response
	if err := xmlutil.Unmarshal(env.Body.InnerXML, &resp); err != nil {
		return nil, saml.Wrap(saml.KindBinding, "failed to parse SAML 1 Response", err)
	}
	return &resp, nil
}

func (r *HTTPArtifactResolver) soapRoundTrip(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	env := saml.SOAPEnvelope{Body: saml.SOAPBody{InnerXML: body}}
	envelope, err := xml.Marshal(&env)
	if err != nil {
		return nil, saml.Wrap(saml.KindBinding, "failed to marshal SOAP envelope", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(envelope))
	if err != nil {
		return nil, wrapTransportError(http.StatusInternalServerError, "failed to build artifact resolution request", err)
	}
	httpReq.Header.Set("Content-Type", "text/xml")
	resp, err := r.client().Do(httpReq)
	if err != nil {
		return nil, wrapTransportError(http.StatusBadGateway, "artifact resolution request failed", err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransportError(http.StatusBadGateway, "failed to read artifact resolution response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, wrapTransportError(resp.StatusCode, "artifact resolution endpoint returned a non-200 status", nil)
	}
	return out, nil
}

// DecodeSAML2Artifact implements the SAML 2 HTTP-Artifact binding (§4.3
// table): parse SAMLart, check it against replayCache, look up the source
// entity's ArtifactResolutionService by (source, index), dereference via
// resolver, and evaluate the policy on the unwrapped inner message.
func DecodeSAML2Artifact(p *policy.Policy, req policy.Request, role, protocol string, resolver ArtifactResolver, replayCache replay.Cache, replayContext string) (*Result, error) {
	wire := req.FormValue("SAMLart")
	if wire == "" {
		return nil, saml.New(saml.KindBinding, "request carries no SAMLart parameter")
	}

	art, err := saml.ParseArtifact(wire)
	if err != nil {
		return nil, err
	}
	if replayCache != nil && !replayCache.CheckAndInsert(replayContext, wire, p.GetTime().Add(p.ClockSkew+artifactReplayWindow)) {
		return nil, saml.New(saml.KindSecurityPolicy, "artifact has already been seen (replay)")
	}

	prov := p.MetadataProvider
	if prov == nil {
		return nil, saml.New(saml.KindMetadata, "no metadata provider configured to resolve artifact source")
	}
	prov.Lock()
	entity, _, err := prov.GetEntityDescriptor(metadata.Criteria{ArtifactSource: art.Source, Role: role, Protocol: protocol})
	prov.Unlock()
	if err != nil {
		return nil, saml.Wrap(saml.KindMetadata, "artifact source lookup failed", err)
	}
	if entity == nil {
		return nil, saml.New(saml.KindArtifact, "no entity found for artifact source")
	}

	endpoint := artifactResolutionEndpoint(entity, role, art.Index)
	if endpoint == "" {
		return nil, saml.New(saml.KindArtifact, "source entity advertises no matching ArtifactResolutionService")
	}

	if resolver == nil {
		resolver = &HTTPArtifactResolver{}
	}
	resolve := &saml.ArtifactResolve{
		RequestAbstractType: saml.RequestAbstractType{
			RootObject: saml.RootObject{ID: saml.GenerateIdentifier(), IssueInstant: saml.TimeNow()},
			Version:    "2.0",
		},
		Artifact: wire,
	}
	ar, err := resolver.ResolveSAML2(context.Background(), endpoint, resolve)
	if err != nil {
		return nil, err
	}

	var inner saml.Response
	if err := xmlutil.Unmarshal(ar.Any.InnerXML, &inner); err != nil {
		return nil, saml.Wrap(saml.KindBinding, "failed to parse artifact-resolved Response", err)
	}

	msg := &policy.Message{Root: &inner, RawDocument: ar.Any.InnerXML}
	if len(inner.Assertions) == 1 {
		msg.Assertion = &inner.Assertions[0]
	}
	if err := extractDetails(&inner, firstAssertionIssuer(&inner), p); err != nil {
		return nil, err
	}
	if err := lookupIssuerRole(p.MetadataProvider, p.Issuer, role, protocol, p); err != nil {
		return nil, err
	}
	if err := p.Evaluate(msg, req); err != nil {
		return nil, err
	}

	relayState := req.FormValue("RelayState")
	return &Result{Message: msg, RelayState: relayState, Authenticated: p.Authenticated, Issuer: p.Issuer}, nil
}

// artifactResolutionEndpoint picks the ArtifactResolutionService location
// matching idx among entity's role(s), falling back to the default or
// lowest-index endpoint when idx has no exact match.
func artifactResolutionEndpoint(entity *saml.EntityDescriptor, role string, idx uint16) string {
	var endpoints []saml.IndexedEndpoint
	switch role {
	case saml.RoleSPSSO:
		for i := range entity.SPSSODescriptors {
			endpoints = append(endpoints, entity.SPSSODescriptors[i].ArtifactResolutionServices...)
		}
	default:
		for i := range entity.IDPSSODescriptors {
			endpoints = append(endpoints, entity.IDPSSODescriptors[i].ArtifactResolutionServices...)
		}
	}
	mgr := saml.NewEndpointManager(endpoints)
	if ep, ok := mgr.ByIndex(int(idx)); ok {
		return ep.Location
	}
	if ep, ok := mgr.Default(); ok {
		return ep.Location
	}
	return ""
}
