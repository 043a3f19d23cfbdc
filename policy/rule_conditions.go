package policy

import (
	"time"

	saml "github.com/insaplace/opensamlcore"
)

// ConditionsRule recursively evaluates Conditions on an Assertion (§4.1
// table, §8 scenario 1).
type ConditionsRule struct {
	// AcceptedConditions lists extension condition QNames ("{ns} local")
	// this rule should silently accept, in addition to whatever the
	// Ignore sub-rule accepts. Kept separate from IgnoreRule so a
	// ConditionsRule can be used standalone.
	AcceptedConditions map[string]bool
}

func (r *ConditionsRule) Evaluate(msg *Message, req Request, p *Policy) (bool, error) {
	if msg.Assertion == nil || msg.Assertion.Conditions == nil {
		return false, nil
	}
	c := msg.Assertion.Conditions
	// SAML timestamps only reliably survive a wire round trip at whole-second
	// precision, so the comparison truncates sub-second
	// fractions on both sides rather than let them cause spurious
	// rejections right at a clock-skew boundary.
	now := p.GetTime().Truncate(time.Second)
	skew := p.ClockSkew

	if c.NotBefore != nil && now.Before(c.NotBefore.Truncate(time.Second).Add(-skew)) {
		return false, saml.New(saml.KindSecurityPolicy, "Assertion is not yet valid.")
	}
	if c.NotOnOrAfter != nil && !now.Before(c.NotOnOrAfter.Truncate(time.Second).Add(skew)) {
		return false, saml.New(saml.KindSecurityPolicy, "Assertion is no longer valid.")
	}

	for _, ext := range c.ExtensionConditions {
		qname := ext.QName()
		if r.AcceptedConditions != nil && r.AcceptedConditions[qname] {
			continue
		}
		ignored := false
		for _, rule := range p.rules {
			if ir, ok := rule.(*IgnoreRule); ok && ir.Accepts(qname) {
				ignored = true
				break
			}
		}
		if ignored {
			continue
		}
		return false, saml.Newf(saml.KindSecurityPolicy, "unrecognized condition %s was not accepted by any rule", qname)
	}

	return true, nil
}
