package metadata

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// NewFolder builds a ChainingProvider with precedence=first over one
// XMLProvider per file directly inside dir (§4.2 "Folder" row: "Directory
// → synthesized Chaining of one XML provider per file"). Non-XML files
// are skipped. Each child is Load()ed synchronously before being added so
// callers can treat the returned provider as immediately usable.
func NewFolder(ctx context.Context, dir string, filters Chain) (*ChainingProvider, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	chain := NewChaining(PrecedenceFirst)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(entry.Name()), ".xml") {
			continue
		}
		child := &XMLProvider{Source: filepath.Join(dir, entry.Name()), Filters: filters}
		if err := child.Load(ctx); err != nil {
			return nil, err
		}
		chain.AddChild(child)
	}
	return chain, nil
}
