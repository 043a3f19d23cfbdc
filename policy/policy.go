// Package policy implements the security-policy engine of §4.1: an ordered
// pipeline of pluggable rules evaluated against a decoded message,
// accumulating issuer identity, authentication state, and correlation
// fields, and failing fatally when a rule rejects the message.
package policy

import (
	"time"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/metadata"
	"github.com/insaplace/opensamlcore/trust"
)

// Message is the abstract decoded message a Rule inspects. Binding
// decoders populate it; rules only read from it (mutation happens on the
// Policy, not the message).
type Message struct {
	// Root is the outermost SAML object (Response, AuthnRequest,
	// ArtifactResolve, ...). Rules type-assert it to what they need.
	Root interface{}

	// Assertion, when non-nil, is the single assertion under evaluation
	// (set by decoders for the Bearer/Conditions/SAML1BrowserSSO rules,
	// and by the caller when evaluating an assertion directly rather than
	// via a protocol response).
	Assertion *saml.Assertion

	SAML1Assertion *saml.SAML1Assertion

	// RawDocument is the raw bytes the message was parsed from, needed by
	// XMLSigning to re-walk the DOM for profile validation.
	RawDocument []byte
}

// Request is the abstract ProtocolRequest of §4.3/§6: a binding-agnostic
// view of the inbound transport the policy needs (request URL, method,
// raw query, decoded form, client certs). Binding decoders implement this
// over whatever HTTP type they're handed; the engine never imports net/http.
type Request interface {
	Method() string
	URL() string // full request URL, as the peer would have constructed Recipient against
	RawQuery() string
	FormValue(name string) string
	ClientCertificates() [][]byte // DER-encoded, leaf first
}

// Rule is a single pluggable policy evaluation step (§4.1 rule catalog).
// Evaluate returns (applied, err): applied is true if this rule recognized
// and processed the message (false lets the engine try the remaining rules
// without failing), err is non-nil only for a fatal rejection.
type Rule interface {
	Evaluate(msg *Message, req Request, p *Policy) (applied bool, err error)
}

// Policy is the carried context of §4.1: constructed per incoming message,
// mutated in place by rules, and discarded after use. It is NOT
// thread-safe (§5); callers must not share one across goroutines.
type Policy struct {
	rules []Rule

	MetadataProvider metadata.Provider
	TrustEngine      *trust.Engine
	IssuerMatching   saml.IssuerMatchingPolicy

	Validate            bool
	ClockSkew           time.Duration
	RequireEntityIssuer bool
	BlockUnsolicited    bool
	Audiences           []string
	CorrelationID       string

	timeOverride *time.Time

	// Per-message state (§3 Lifecycle: "reset() clears per-message state").
	MessageID     string
	IssueInstant  time.Time
	InResponseTo  string
	Issuer        *saml.Issuer
	IssuerRole    interface{}
	Authenticated bool

	// SubjectConfirmation is the SAML2AssertionPolicy extension noted in
	// §9 Open Questions: a slot cleared only on a full reset, populated by
	// the Bearer rule once it accepts a confirmation.
	SubjectConfirmation *saml.SubjectConfirmation
}

// New constructs a Policy with the given ordered rule set.
func New(rules ...Rule) *Policy {
	return &Policy{
		rules:          rules,
		IssuerMatching: saml.DefaultIssuerMatchingPolicy{},
		ClockSkew:      30 * time.Second,
	}
}

// AddRule appends a rule to the end of the evaluation order (§5 Ordering:
// "rules within a policy are evaluated in insertion order").
func (p *Policy) AddRule(r Rule) { p.rules = append(p.rules, r) }

// SetTime overrides GetTime for the lifetime of this policy (testing hook,
// §4.1 carried context).
func (p *Policy) SetTime(t time.Time) { p.timeOverride = &t }

// GetTime returns the policy's effective clock: the override if set, else
// saml.TimeNow().
func (p *Policy) GetTime() time.Time {
	if p.timeOverride != nil {
		return *p.timeOverride
	}
	return saml.TimeNow()
}

// Evaluate runs every rule, in order, against msg/req. The engine does not
// short-circuit on a rule returning applied=true: "all rules see every
// message" (§4.1). The first fatal error is returned immediately.
func (p *Policy) Evaluate(msg *Message, req Request) error {
	for _, rule := range p.rules {
		if _, err := rule.Evaluate(msg, req, p); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears per-message state. When messageOnly is true, issuer/
// issuer-role/authenticated/subjectConfirmation survive (the two-layer SOAP
// evaluation of §4.3 relies on this to carry issuer identity from the
// envelope layer into the inner-message layer); when false, every field
// including SubjectConfirmation is cleared (§9 Open Questions).
func (p *Policy) Reset(messageOnly bool) {
	p.MessageID = ""
	p.IssueInstant = time.Time{}
	p.InResponseTo = ""
	if !messageOnly {
		p.Issuer = nil
		p.IssuerRole = nil
		p.Authenticated = false
		p.SubjectConfirmation = nil
	}
}

// SetIssuer implements §4.1's setIssuer: conflicting non-matching issuers
// fail fatally; requireEntityIssuer enforces Format=="entity" (or absent).
func (p *Policy) SetIssuer(issuer *saml.Issuer) error {
	if issuer == nil {
		return nil
	}
	if p.RequireEntityIssuer && issuer.Format != "" && issuer.Format != saml.NameIDFormatEntity {
		return saml.Newf(saml.KindSecurityPolicy, "issuer format %q is not permitted, entity issuer required", issuer.Format)
	}
	if p.Issuer != nil {
		matcher := p.IssuerMatching
		if matcher == nil {
			matcher = saml.DefaultIssuerMatchingPolicy{}
		}
		if !matcher.IssuerMatches(p.Issuer, issuer) {
			return saml.New(saml.KindSecurityPolicy, "conflicting issuer")
		}
		return nil
	}
	p.Issuer = issuer
	return nil
}

// SetIssuerMetadata implements §4.1's setIssuerMetadata: a second, different
// non-nil role is a fatal conflict.
func (p *Policy) SetIssuerMetadata(role interface{}) error {
	if role == nil {
		return nil
	}
	if p.IssuerRole != nil && p.IssuerRole != role {
		return saml.New(saml.KindSecurityPolicy, "conflicting issuer metadata role")
	}
	p.IssuerRole = role
	return nil
}
