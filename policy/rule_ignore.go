package policy

// IgnoreRule accepts a Condition with a given QName/Type as harmless
// (§4.1 table). It never fails and never claims to have "applied" in the
// sense of authenticating anything; its only effect is registering
// acceptance with a co-installed ConditionsRule via Accepts.
type IgnoreRule struct {
	// QName is the "{namespace} local" form ConditionsRule.AcceptedConditions
	// keys on (see ExtensionCondition.QName).
	QName string
}

// Accepts reports whether this rule accepts the given extension condition.
func (r *IgnoreRule) Accepts(qname string) bool { return r.QName == qname }

func (r *IgnoreRule) Evaluate(msg *Message, req Request, p *Policy) (bool, error) {
	return true, nil
}
