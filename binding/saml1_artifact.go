package binding

import (
	"context"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/metadata"
	"github.com/insaplace/opensamlcore/policy"
	"github.com/insaplace/opensamlcore/replay"
)

// DecodeSAML1Artifact implements the SAML 1.x Artifact profile (§4.3
// table): parse the first SAMLart value (any further SAMLart values in the
// request are ignored), replay-check the raw artifact,
// metadata-lookup by source, dereference via resolver, evaluate the policy
// on the resulting samlp:Response.
func DecodeSAML1Artifact(p *policy.Policy, req policy.Request, resolver ArtifactResolver, replayCache replay.Cache, replayContext string) (*Result, error) {
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
	entity, _, err := prov.GetEntityDescriptor(metadata.Criteria{ArtifactSource: art.Source, Role: saml.RoleIDPSSO, Protocol: saml.SAML11ProtocolNamespace})
	prov.Unlock()
	if err != nil {
		return nil, saml.Wrap(saml.KindMetadata, "artifact source lookup failed", err)
	}
	if entity == nil {
		return nil, saml.New(saml.KindArtifact, "no entity found for artifact source")
	}

	endpoint := artifactResolutionEndpoint(entity, saml.RoleIDPSSO, art.Index)
	if endpoint == "" {
		return nil, saml.New(saml.KindArtifact, "source entity advertises no matching ArtifactResolutionService")
	}

	if resolver == nil {
		resolver = &HTTPArtifactResolver{}
	}
	resp, err := resolver.ResolveSAML1(context.Background(), endpoint, wire)
	if err != nil {
		return nil, err
	}

	p.MessageID = resp.ResponseID
	p.IssueInstant = resp.IssueInstant
	p.InResponseTo = resp.InResponseTo
	if len(resp.Assertions) > 0 && resp.Assertions[0].Issuer != "" {
		if err := p.SetIssuer(&saml.Issuer{Value: resp.Assertions[0].Issuer, Format: saml.NameIDFormatEntity}); err != nil {
			return nil, err
		}
	}

	msg := &policy.Message{Root: resp}
	if len(resp.Assertions) == 1 {
		msg.SAML1Assertion = &resp.Assertions[0]
	}

	if err := lookupIssuerRole(p.MetadataProvider, p.Issuer, saml.RoleIDPSSO, saml.SAML11ProtocolNamespace, p); err != nil {
		return nil, err
	}
	if err := p.Evaluate(msg, req); err != nil {
		return nil, err
	}

	return &Result{Message: msg, Authenticated: p.Authenticated, Issuer: p.Issuer}, nil
}
