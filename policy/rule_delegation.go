package policy

import (
	"time"

	saml "github.com/insaplace/opensamlcore"
)

// DelegationMatch selects how a configured delegate chain must line up
// against the message's delegation condition (§4.1 table).
type DelegationMatch int

const (
	DelegationMatchAny DelegationMatch = iota
	DelegationMatchNewest
	DelegationMatchOldest
)

// DelegationRestrictionRule evaluates a message's DelegationRestriction
// condition against a configured chain (§4.1 table, grounded in
// DelegationRestrictionRule.cpp): with Match=Any, every configured delegate
// must appear somewhere in the message's chain; with Oldest/Newest, the
// configured chain must match a prefix/suffix of the message's chain in
// order. MaxTimeSinceDelegation, if positive, additionally bounds how long
// ago the oldest (first) delegation in the chain occurred.
type DelegationRestrictionRule struct {
	Match                  DelegationMatch
	Delegates              []saml.Delegate
	MaxTimeSinceDelegation time.Duration
}

func (r *DelegationRestrictionRule) Evaluate(msg *Message, req Request, p *Policy) (bool, error) {
	if msg.Assertion == nil || msg.Assertion.Conditions == nil || msg.Assertion.Conditions.DelegationRestriction == nil {
		return false, nil
	}
	dels := msg.Assertion.Conditions.DelegationRestriction.Delegates

	if len(r.Delegates) > 0 {
		switch r.Match {
		case DelegationMatchAny:
			for _, want := range r.Delegates {
				if !anyDelegateMatches(dels, want) {
					return false, saml.New(saml.KindSecurityPolicy, "delegation chain is missing a required delegate")
				}
			}
		case DelegationMatchOldest:
			if !chainHasPrefix(dels, r.Delegates) {
				return false, saml.New(saml.KindSecurityPolicy, "delegation chain does not start with the configured delegate sequence")
			}
		case DelegationMatchNewest:
			if !chainHasSuffix(dels, r.Delegates) {
				return false, saml.New(saml.KindSecurityPolicy, "delegation chain does not end with the configured delegate sequence")
			}
		}
	}

	if r.MaxTimeSinceDelegation > 0 {
		if len(dels) == 0 || dels[0].DelegationInstant == nil {
			return false, saml.New(saml.KindSecurityPolicy, "delegation chain has no DelegationInstant to check against maxTimeSinceDelegation")
		}
		elapsed := p.GetTime().Sub(*dels[0].DelegationInstant) - p.ClockSkew
		if elapsed > r.MaxTimeSinceDelegation {
			return false, saml.New(saml.KindSecurityPolicy, "delegation occurred too long ago")
		}
	}

	return true, nil
}

func anyDelegateMatches(dels []saml.Delegate, want saml.Delegate) bool {
	for _, d := range dels {
		if saml.SameDelegate(d, want) {
			return true
		}
	}
	return false
}

func chainHasPrefix(dels, want []saml.Delegate) bool {
	if len(want) > len(dels) {
		return false
	}
	for i, w := range want {
		if !saml.SameDelegate(dels[i], w) {
			return false
		}
	}
	return true
}

func chainHasSuffix(dels, want []saml.Delegate) bool {
	if len(want) > len(dels) {
		return false
	}
	offset := len(dels) - len(want)
	for i, w := range want {
		if !saml.SameDelegate(dels[offset+i], w) {
			return false
		}
	}
	return true
}
