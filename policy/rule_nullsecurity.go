package policy

// NullSecurityRule unconditionally marks a message authenticated. It exists
// for local development and test harnesses that want to exercise the rest
// of the pipeline without standing up real credentials (§4.1 table:
// "debug only").
type NullSecurityRule struct{}

func (r *NullSecurityRule) Evaluate(msg *Message, req Request, p *Policy) (bool, error) {
	p.Authenticated = true
	return true, nil
}
