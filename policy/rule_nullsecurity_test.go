package policy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNullSecurityRuleAlwaysAuthenticates(t *testing.T) {
	p := New(&NullSecurityRule{})
	require.NoError(t, p.Evaluate(&Message{}, fakeRequest{}))
	require.True(t, p.Authenticated)
}
