package policy

import (
	"strings"
	"time"

	saml "github.com/insaplace/opensamlcore"
)

// BearerRule validates a SAML 2 Bearer SubjectConfirmation (§4.1 table,
// §8 scenario 2): Recipient must equal the request URL stripped of query,
// InResponseTo must equal the policy's correlation ID, and NotBefore/
// NotOnOrAfter must bracket the current time.
type BearerRule struct {
	// MissingFatal controls whether failing to find any satisfying
	// confirmation is itself a fatal error (§4.1 table: "No satisfying
	// confirmation found (when missingFatal)").
	MissingFatal bool
}

func (r *BearerRule) Evaluate(msg *Message, req Request, p *Policy) (bool, error) {
	if msg.Assertion == nil || msg.Assertion.Subject == nil {
		return false, nil
	}

	now := p.GetTime().Truncate(time.Second)
	skew := p.ClockSkew
	recipientURL := stripQuery(req.URL())

	var lastErr error
	for i := range msg.Assertion.Subject.SubjectConfirmations {
		sc := msg.Assertion.Subject.SubjectConfirmations[i]
		if sc.Method != saml.SubjectConfirmationMethodBearer {
			continue
		}
		if sc.SubjectConfirmationData == nil {
			lastErr = saml.New(saml.KindSecurityPolicy, "bearer confirmation has no SubjectConfirmationData")
			continue
		}
		scd := sc.SubjectConfirmationData

		if scd.Recipient != "" && scd.Recipient != recipientURL {
			lastErr = saml.Newf(saml.KindSecurityPolicy, "bearer confirmation recipient mismatch: expected %q, got %q", recipientURL, scd.Recipient)
			continue
		}
		if p.CorrelationID != "" && scd.InResponseTo != "" && scd.InResponseTo != p.CorrelationID {
			lastErr = saml.Newf(saml.KindSecurityPolicy, "bearer confirmation InResponseTo mismatch: expected %q, got %q", p.CorrelationID, scd.InResponseTo)
			continue
		}
		if scd.NotBefore != nil && now.Before(scd.NotBefore.Truncate(time.Second).Add(-skew)) {
			lastErr = saml.New(saml.KindSecurityPolicy, "bearer confirmation is not yet valid")
			continue
		}
		if scd.NotOnOrAfter != nil && !now.Before(scd.NotOnOrAfter.Truncate(time.Second).Add(skew)) {
			lastErr = saml.New(saml.KindSecurityPolicy, "bearer confirmation is no longer valid")
			continue
		}

		p.SubjectConfirmation = &sc
		p.Authenticated = true
		return true, nil
	}

	if r.MissingFatal {
		if lastErr != nil {
			return false, lastErr
		}
		return false, saml.New(saml.KindSecurityPolicy, "no bearer SubjectConfirmation satisfied this request")
	}
	return false, nil
}

// stripQuery removes everything from the first "?" onward, matching the
// "minus query" comparisons used for Recipient (§4.1, §4.3).
func stripQuery(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}
