package policy

import saml "github.com/insaplace/opensamlcore"

// AudienceRule requires at least one Audience URI in the assertion's
// AudienceRestriction(s) to be present in the policy's configured audience
// list (or this rule's own static list), per §4.1 table.
type AudienceRule struct {
	// Audiences, if non-empty, is used instead of Policy.Audiences.
	Audiences []string
}

func (r *AudienceRule) Evaluate(msg *Message, req Request, p *Policy) (bool, error) {
	if msg.Assertion == nil || msg.Assertion.Conditions == nil {
		return false, nil
	}
	restrictions := msg.Assertion.Conditions.AudienceRestrictions
	if len(restrictions) == 0 {
		return false, nil
	}

	accepted := r.Audiences
	if len(accepted) == 0 {
		accepted = p.Audiences
	}
	acceptedSet := make(map[string]bool, len(accepted))
	for _, a := range accepted {
		acceptedSet[a] = true
	}

	for _, restriction := range restrictions {
		matched := false
		for _, aud := range restriction.Audiences {
			if acceptedSet[aud] {
				matched = true
				break
			}
		}
		if !matched {
			return false, saml.New(saml.KindSecurityPolicy, "audience restriction rejected: no audience in this restriction names the receiving entity")
		}
	}
	return true, nil
}
