package policy

import (
	"testing"

	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"

	saml "github.com/insaplace/opensamlcore"
)

func TestSetIssuerConflict(t *testing.T) {
	p := New()
	require.NoError(t, p.SetIssuer(&saml.Issuer{Value: "https://idp.example.org"}))
	err := p.SetIssuer(&saml.Issuer{Value: "https://other.example.org"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "conflicting issuer")
}

func TestSetIssuerRequiresEntityFormat(t *testing.T) {
	p := New()
	p.RequireEntityIssuer = true
	err := p.SetIssuer(&saml.Issuer{Value: "v", Format: saml.NameIDFormatPersistent})
	require.Error(t, err)
}

func TestSetIssuerMetadataConflict(t *testing.T) {
	p := New()
	require.NoError(t, p.SetIssuerMetadata("role-a"))
	err := p.SetIssuerMetadata("role-b")
	require.Error(t, err)
}

func TestResetMessageOnlyPreservesIssuer(t *testing.T) {
	p := New()
	require.NoError(t, p.SetIssuer(&saml.Issuer{Value: "https://idp.example.org"}))
	p.Authenticated = true
	p.MessageID = "_abc"

	p.Reset(true)
	require.Empty(t, p.MessageID)
	require.NotNil(t, p.Issuer)
	require.True(t, p.Authenticated)
}

func TestResetFullClearsEverything(t *testing.T) {
	p := New()
	require.NoError(t, p.SetIssuer(&saml.Issuer{Value: "https://idp.example.org"}))
	p.Authenticated = true

	p.Reset(false)
	if p.Issuer != nil || p.Authenticated {
		t.Fatalf("Reset(false) left state behind: %# v", pretty.Formatter(p))
	}
}

func TestEvaluateRunsEveryRuleRegardlessOfApplied(t *testing.T) {
	var calls int
	rule := ruleFunc(func(msg *Message, req Request, p *Policy) (bool, error) {
		calls++
		return true, nil
	})
	p := New(rule, rule, rule)
	require.NoError(t, p.Evaluate(&Message{}, fakeRequest{}))
	require.Equal(t, 3, calls)
}

type ruleFunc func(msg *Message, req Request, p *Policy) (bool, error)

func (f ruleFunc) Evaluate(msg *Message, req Request, p *Policy) (bool, error) { return f(msg, req, p) }
