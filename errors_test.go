package saml

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeAnnotator struct {
	entityID   string
	name, mail string
	errorURL   string
	gotPriority []string
}

func (f *fakeAnnotator) EntityIDFor(role interface{}) string { return f.entityID }
func (f *fakeAnnotator) ContactsFor(role interface{}, priority []string) (string, string) {
	f.gotPriority = priority
	return f.name, f.mail
}
func (f *fakeAnnotator) ErrorURLFor(role interface{}) string { return f.errorURL }

func TestAnnotateDefaultsPriority(t *testing.T) {
	ann := &fakeAnnotator{entityID: "https://idp.example.org", name: "ops", mail: "ops@example.org", errorURL: "https://idp.example.org/errors"}
	e := Annotate(New(KindMetadata, "boom"), ann, nil, nil)
	require.Equal(t, []string{"support", "technical"}, ann.gotPriority)
	require.Equal(t, "https://idp.example.org", e.EntityID)
	require.Equal(t, "ops", e.ContactName)
	require.Equal(t, "ops@example.org", e.ContactEmail)
	require.Equal(t, "https://idp.example.org/errors", e.ErrorURL)
}

func TestAnnotateRespectsExplicitPriority(t *testing.T) {
	ann := &fakeAnnotator{}
	Annotate(New(KindMetadata, "boom"), ann, nil, []string{"billing"})
	require.Equal(t, []string{"billing"}, ann.gotPriority)
}

func TestAnnotateWrapsPlainError(t *testing.T) {
	ann := &fakeAnnotator{entityID: "https://sp.example.org"}
	e := Annotate(errors.New("plain failure"), ann, nil, nil)
	require.Equal(t, KindMetadata, e.Kind)
	require.Equal(t, "https://sp.example.org", e.EntityID)
	require.Contains(t, e.Error(), "plain failure")
}

func TestAnnotateNilAnnotatorIsNoop(t *testing.T) {
	base := New(KindBinding, "boom")
	e := Annotate(base, nil, nil, nil)
	require.Same(t, base, e)
	require.Empty(t, e.EntityID)
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	e := Wrap(KindArtifact, "wrapped", cause)
	require.ErrorIs(t, e, cause)
	require.Contains(t, e.Error(), "root cause")
}

func TestNewfFormatsMessage(t *testing.T) {
	e := Newf(KindMetadataFilter, "entity %q rejected", "https://sp.example.org")
	require.Equal(t, `MetadataFilter: entity "https://sp.example.org" rejected`, e.Error())
}
