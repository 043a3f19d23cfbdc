package policy

import (
	"time"

	saml "github.com/insaplace/opensamlcore"
	"github.com/insaplace/opensamlcore/replay"
)

// MessageFlowRule implements freshness + replay + request/response
// correlation (§4.1 table, "MessageFlow freshness"/"Replay"/"Correlation"
// algorithms).
type MessageFlowRule struct {
	// Expires is the freshness window (default 60s per §4.1).
	Expires time.Duration

	// ReplayCache, when non-nil, is consulted for MessageID replay. A nil
	// cache disables replay checking (useful for decoders that handle it
	// themselves, e.g. artifact-token replay per §9 Open Questions).
	ReplayCache replay.Cache

	// ReplayContext namespaces the replay cache key, e.g. the receiving
	// entity's own entityID, so two distinct policies sharing a process
	// don't collide on MessageID.
	ReplayContext string
}

func (r *MessageFlowRule) expires() time.Duration {
	if r.Expires > 0 {
		return r.Expires
	}
	return 60 * time.Second
}

// Evaluate implements Rule.
func (r *MessageFlowRule) Evaluate(msg *Message, req Request, p *Policy) (bool, error) {
	now := p.GetTime()
	skew := p.ClockSkew
	expires := r.expires()

	issueInstant := p.IssueInstant
	if issueInstant.IsZero() {
		issueInstant = now
	}

	if p.MessageID != "" {
		if issueInstant.After(now.Add(skew)) {
			return false, saml.New(saml.KindSecurityPolicy, "message was issued in the future")
		}
		if issueInstant.Before(now.Add(-skew - expires)) {
			return false, saml.New(saml.KindSecurityPolicy, "message has expired")
		}
	}

	if r.ReplayCache != nil && p.MessageID != "" {
		expiration := issueInstant.Add(skew + expires)
		if !r.ReplayCache.CheckAndInsert(r.ReplayContext, p.MessageID, expiration) {
			return false, saml.Newf(saml.KindSecurityPolicy, "message ID %q has already been seen (replay)", p.MessageID)
		}
	}

	if p.CorrelationID != "" {
		if p.InResponseTo != p.CorrelationID {
			return false, saml.Newf(saml.KindSecurityPolicy, "InResponseTo %q does not match expected correlation ID %q", p.InResponseTo, p.CorrelationID)
		}
	} else if p.InResponseTo != "" && p.BlockUnsolicited {
		return false, saml.New(saml.KindSecurityPolicy, "unsolicited response blocked by policy")
	}

	return true, nil
}
