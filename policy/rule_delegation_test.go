package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	saml "github.com/insaplace/opensamlcore"
)

func delegate(name string) saml.Delegate {
	return saml.Delegate{NameID: &saml.NameID{Value: name}}
}

func assertionWithDelegates(dels ...saml.Delegate) *saml.Assertion {
	return &saml.Assertion{
		Conditions: &saml.Conditions{
			DelegationRestriction: &saml.DelegationRestriction{Delegates: dels},
		},
	}
}

func TestDelegationMatchAnyRequiresEveryDelegate(t *testing.T) {
	msg := &Message{Assertion: assertionWithDelegates(delegate("a"), delegate("b"))}
	rule := &DelegationRestrictionRule{Match: DelegationMatchAny, Delegates: []saml.Delegate{delegate("a")}}
	p := New(rule)
	require.NoError(t, p.Evaluate(msg, fakeRequest{}))

	rule = &DelegationRestrictionRule{Match: DelegationMatchAny, Delegates: []saml.Delegate{delegate("c")}}
	p = New(rule)
	require.Error(t, p.Evaluate(msg, fakeRequest{}))
}

func TestDelegationMatchOldestRequiresPrefix(t *testing.T) {
	msg := &Message{Assertion: assertionWithDelegates(delegate("a"), delegate("b"), delegate("c"))}
	rule := &DelegationRestrictionRule{Match: DelegationMatchOldest, Delegates: []saml.Delegate{delegate("a"), delegate("b")}}
	p := New(rule)
	require.NoError(t, p.Evaluate(msg, fakeRequest{}))

	rule = &DelegationRestrictionRule{Match: DelegationMatchOldest, Delegates: []saml.Delegate{delegate("b"), delegate("c")}}
	p = New(rule)
	require.Error(t, p.Evaluate(msg, fakeRequest{}))
}

func TestDelegationMaxTimeSinceDelegation(t *testing.T) {
	instant := time.Now().Add(-2 * time.Hour)
	dels := []saml.Delegate{{NameID: &saml.NameID{Value: "a"}, DelegationInstant: &instant}}
	msg := &Message{Assertion: assertionWithDelegates(dels...)}
	rule := &DelegationRestrictionRule{MaxTimeSinceDelegation: time.Hour}
	p := New(rule)
	require.Error(t, p.Evaluate(msg, fakeRequest{}))

	rule = &DelegationRestrictionRule{MaxTimeSinceDelegation: 3 * time.Hour}
	p = New(rule)
	require.NoError(t, p.Evaluate(msg, fakeRequest{}))
}
