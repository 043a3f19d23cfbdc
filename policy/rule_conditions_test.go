package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	saml "github.com/insaplace/opensamlcore"
)

func timePtr(t time.Time) *time.Time { return &t }

// §8 scenario 1: Conditions time window.
func TestConditionsTimeWindow(t *testing.T) {
	notBefore := time.Date(1984, 8, 26, 10, 1, 30, 0, time.UTC)
	notOnOrAfter := time.Date(1984, 8, 26, 10, 11, 30, 0, time.UTC)
	assertion := &saml.Assertion{
		Conditions: &saml.Conditions{
			NotBefore:    timePtr(notBefore),
			NotOnOrAfter: timePtr(notOnOrAfter),
		},
	}
	rule := &ConditionsRule{}

	newPolicy := func(now time.Time) *Policy {
		p := New(rule)
		p.ClockSkew = 30 * time.Second
		p.SetTime(now)
		return p
	}

	// Within the window with skew applied: accept.
	p := newPolicy(time.Date(1984, 8, 26, 10, 1, 0, 0, time.UTC))
	require.NoError(t, p.Evaluate(&Message{Assertion: assertion}, fakeRequest{}))

	// One second earlier than the skew-adjusted NotBefore: reject.
	p = newPolicy(time.Date(1984, 8, 26, 10, 0, 59, 0, time.UTC))
	err := p.Evaluate(&Message{Assertion: assertion}, fakeRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not yet valid")

	// Past the skew-adjusted NotOnOrAfter: reject.
	p = newPolicy(time.Date(1984, 8, 26, 10, 12, 1, 0, time.UTC))
	err = p.Evaluate(&Message{Assertion: assertion}, fakeRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no longer valid")
}

func TestConditionsRejectsUnknownExtension(t *testing.T) {
	assertion := &saml.Assertion{
		Conditions: &saml.Conditions{
			ExtensionConditions: []saml.ExtensionCondition{{}},
		},
	}
	rule := &ConditionsRule{}
	p := New(rule)
	require.Error(t, p.Evaluate(&Message{Assertion: assertion}, fakeRequest{}))
}

func TestConditionsAcceptsIgnoredExtension(t *testing.T) {
	ext := saml.ExtensionCondition{}
	ext.XMLName.Space = "urn:example"
	ext.XMLName.Local = "Foo"
	assertion := &saml.Assertion{
		Conditions: &saml.Conditions{
			ExtensionConditions: []saml.ExtensionCondition{ext},
		},
	}
	rule := &ConditionsRule{AcceptedConditions: map[string]bool{ext.QName(): true}}
	p := New(rule)
	require.NoError(t, p.Evaluate(&Message{Assertion: assertion}, fakeRequest{}))
}
