package metadata

import (
	"os"
	"path/filepath"

	"github.com/dchest/uniuri"
)

// writeBackingFile persists data to path atomically via write-to-temp +
// rename (§4.2 XML provider, §6 "Persisted state", §9 "Backing-file
// atomicity"): the temp name is the final path suffixed by "." + 4 random
// hex bytes, and POSIX rename is atomic within a filesystem.
func writeBackingFile(path string, data []byte) error {
	tmp := path + "." + uniuri.NewLenChars(8, []byte("0123456789abcdef"))
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o700)
}
