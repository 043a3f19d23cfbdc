package policy

import (
	saml "github.com/insaplace/opensamlcore"
)

// SAML1BrowserSSORule enforces the SAML 1.x Browser/Artifact SSO profile
// time window and confirmation method (§4.1 table: "Assertion has
// NotBefore/NotOnOrAfter and every statement has a SubjectConfirmation with
// a method in {bearer, artifact, artifact-01}").
type SAML1BrowserSSORule struct{}

var saml1AcceptedMethods = map[string]bool{
	saml.SAML1ConfirmationMethodBearer:     true,
	saml.SAML1ConfirmationMethodArtifact:   true,
	saml.SAML1ConfirmationMethodArtifact01: true,
}

func (r *SAML1BrowserSSORule) Evaluate(msg *Message, req Request, p *Policy) (bool, error) {
	a := msg.SAML1Assertion
	if a == nil {
		return false, nil
	}

	if a.Conditions == nil || a.Conditions.NotBefore == nil || a.Conditions.NotOnOrAfter == nil {
		return false, saml.New(saml.KindSecurityPolicy, "SAML 1 assertion is missing NotBefore/NotOnOrAfter")
	}

	if len(a.Statements) == 0 {
		return false, saml.New(saml.KindSecurityPolicy, "SAML 1 assertion carries no statements")
	}
	for _, stmt := range a.Statements {
		if stmt.SubjectConfirmation == nil {
			return false, saml.New(saml.KindSecurityPolicy, "SAML 1 statement has no SubjectConfirmation")
		}
		if !anyMethodAccepted(stmt.SubjectConfirmation.ConfirmationMethods) {
			return false, saml.New(saml.KindSecurityPolicy, "SAML 1 statement has no acceptable ConfirmationMethod")
		}
	}

	p.Authenticated = true
	return true, nil
}

func anyMethodAccepted(methods []string) bool {
	for _, m := range methods {
		if saml1AcceptedMethods[m] {
			return true
		}
	}
	return false
}
