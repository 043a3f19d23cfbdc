package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	saml "github.com/insaplace/opensamlcore"
)

func saml1AssertionWithMethod(method string) *saml.SAML1Assertion {
	before := time.Now().Add(-time.Minute)
	after := time.Now().Add(time.Minute)
	return &saml.SAML1Assertion{
		AssertionID: "_a1",
		Conditions:  &saml.SAML1Conditions{NotBefore: &before, NotOnOrAfter: &after},
		Statements: []saml.SAML1Statement{{
			SubjectConfirmation: &saml.SAML1SubjectConfirmation{ConfirmationMethods: []string{method}},
		}},
	}
}

func TestSAML1BrowserSSORuleAcceptsBearer(t *testing.T) {
	r := &SAML1BrowserSSORule{}
	msg := &Message{SAML1Assertion: saml1AssertionWithMethod(saml.SAML1ConfirmationMethodBearer)}
	applied, err := r.Evaluate(msg, nil, &Policy{})
	require.True(t, applied)
	require.NoError(t, err)
}

func TestSAML1BrowserSSORuleRejectsUnacceptableMethod(t *testing.T) {
	r := &SAML1BrowserSSORule{}
	msg := &Message{SAML1Assertion: saml1AssertionWithMethod("urn:oasis:names:tc:SAML:1.0:cm:unknown")}
	_, err := r.Evaluate(msg, nil, &Policy{})
	require.Error(t, err)
}

func TestSAML1BrowserSSORuleRejectsMissingConditions(t *testing.T) {
	r := &SAML1BrowserSSORule{}
	a := saml1AssertionWithMethod(saml.SAML1ConfirmationMethodBearer)
	a.Conditions = nil
	_, err := r.Evaluate(&Message{SAML1Assertion: a}, nil, &Policy{})
	require.Error(t, err)
}

func TestSAML1BrowserSSORuleRejectsNoStatements(t *testing.T) {
	r := &SAML1BrowserSSORule{}
	a := saml1AssertionWithMethod(saml.SAML1ConfirmationMethodBearer)
	a.Statements = nil
	_, err := r.Evaluate(&Message{SAML1Assertion: a}, nil, &Policy{})
	require.Error(t, err)
}

func TestSAML1BrowserSSORuleSkipsWithoutAssertion(t *testing.T) {
	r := &SAML1BrowserSSORule{}
	applied, err := r.Evaluate(&Message{}, nil, &Policy{})
	require.False(t, applied)
	require.NoError(t, err)
}

func TestSAML1BrowserSSORuleSetsAuthenticated(t *testing.T) {
	p := New(&SAML1BrowserSSORule{})
	msg := &Message{SAML1Assertion: saml1AssertionWithMethod(saml.SAML1ConfirmationMethodArtifact)}
	require.NoError(t, p.Evaluate(msg, fakeRequest{}))
	require.True(t, p.Authenticated)
}
