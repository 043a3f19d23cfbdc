package binding

import (
	"encoding/xml"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/internal/xmlutil"
	"github.com/insaplace/opensamlcore/metadata"
	"github.com/insaplace/opensamlcore/policy"
)

// Result is what every decoder returns on success: the unmarshalled
// message plus the RelayState/caller-supplied correlation value, and
// whatever the policy engine concluded along the way.
type Result struct {
	Message       *policy.Message
	RelayState    string
	Authenticated bool
	Issuer        *saml.Issuer
}

// extractDetails populates p's MessageID/IssueInstant/InResponseTo from
// root and calls p.SetIssuer, preferring root's own Issuer but falling
// back to assertionIssuer (the first assertion's Issuer, for a bare
// samlp:Response whose top-level Issuer was omitted) — §4.3 "Decoders
// also perform message-detail extraction: set policy.messageID = root.ID
// ...; extract the Issuer ... only set policy.issuer if Format is absent
// or equals entity."
func extractDetails(root *saml.Response, assertionIssuer *saml.Issuer, p *policy.Policy) error {
	p.MessageID = root.ID
	p.IssueInstant = root.IssueInstant
	p.InResponseTo = root.InResponseTo

	issuer := root.Issuer
	if issuer == nil {
		issuer = assertionIssuer
	}
	if issuer != nil && (issuer.Format == "" || issuer.Format == saml.NameIDFormatEntity) {
		return p.SetIssuer(issuer)
	}
	return nil
}

// lookupIssuerRole resolves (issuer, role, protocol) against prov and
// records the matched role on p (§4.3: "perform a metadata lookup with
// (issuer, role, protocol); store the role on the policy").
func lookupIssuerRole(prov metadata.Provider, issuer *saml.Issuer, role, protocol string, p *policy.Policy) error {
	if prov == nil || issuer == nil {
		return nil
	}
	prov.Lock()
	defer prov.Unlock()

	_, matched, err := prov.GetEntityDescriptor(metadata.Criteria{EntityID: issuer.Value, Role: role, Protocol: protocol})
	if err != nil {
		return saml.Wrap(saml.KindMetadata, "issuer metadata lookup failed", err)
	}
	return p.SetIssuerMetadata(matched)
}

// parseSAML2Message unmarshals raw as whichever root element it declares,
// trying the shapes a SAML 2 binding commonly carries: samlp:Response,
// samlp:AuthnRequest, samlp:ArtifactResolve. Decoders that know which shape
// to expect can skip straight to xml.Unmarshal; this is for the POST/
// Redirect decoders, which accept either a request or a response on the
// same endpoint shape (grounded in the teacher's samlsp/fetch_metadata.go
// EntityDescriptor-vs-EntitiesDescriptor unwrap-by-trial idiom).
func parseSAML2Message(raw []byte) (interface{}, error) {
	var probe struct {
		XMLName xml.Name
	}
	if err := xmlutil.Unmarshal(raw, &probe); err != nil {
		return nil, saml.Wrap(saml.KindBinding, "failed to parse SAML message", err)
	}
	switch probe.XMLName.Local {
	case "Response":
		var resp saml.Response
		if err := xmlutil.Unmarshal(raw, &resp); err != nil {
			return nil, saml.Wrap(saml.KindBinding, "failed to parse samlp:Response", err)
		}
		return &resp, nil
	case "AuthnRequest":
		var req saml.AuthnRequest
		if err := xmlutil.Unmarshal(raw, &req); err != nil {
			return nil, saml.Wrap(saml.KindBinding, "failed to parse samlp:AuthnRequest", err)
		}
		return &req, nil
	case "ArtifactResolve":
		var ar saml.ArtifactResolve
		if err := xmlutil.Unmarshal(raw, &ar); err != nil {
			return nil, saml.Wrap(saml.KindBinding, "failed to parse samlp:ArtifactResolve", err)
		}
		return &ar, nil
	case "ArtifactResponse":
		var ar saml.ArtifactResponse
		if err := xmlutil.Unmarshal(raw, &ar); err != nil {
			return nil, saml.Wrap(saml.KindBinding, "failed to parse samlp:ArtifactResponse", err)
		}
		return &ar, nil
	}
	return nil, saml.Newf(saml.KindBinding, "unrecognized SAML 2 message element %q", probe.XMLName.Local)
}

// firstAssertionIssuer returns the Issuer of resp's first cleartext
// assertion, or nil if there is none (bare status responses, or
// responses carrying only EncryptedAssertions that haven't been
// decrypted yet).
func firstAssertionIssuer(resp *saml.Response) *saml.Issuer {
	if len(resp.Assertions) == 0 {
		return nil
	}
	return resp.Assertions[0].Issuer
}
