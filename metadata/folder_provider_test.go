package metadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	saml "github.com/insaplace/opensamlcore"
)

func TestNewFolderChainsOneProviderPerXMLFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xml"), []byte(bareEntityXML), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("not xml"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o700))

	chain, err := NewFolder(context.Background(), dir, nil)
	require.NoError(t, err)
	require.Len(t, chain.Children, 1)

	e, _, err := chain.GetEntityDescriptor(Criteria{EntityID: "https://idp.example.org"})
	require.NoError(t, err)
	require.IsType(t, &saml.EntityDescriptor{}, e)
}

func TestNewFolderErrorsOnUnreadableDir(t *testing.T) {
	_, err := NewFolder(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"), nil)
	require.Error(t, err)
}

func TestNewFolderErrorsWhenChildFailsToLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.xml"), []byte("not valid xml"), 0o600))

	_, err := NewFolder(context.Background(), dir, nil)
	require.Error(t, err)
}
