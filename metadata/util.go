package metadata

import (
	"io"
	"net/http"
)

// httpBody reads and closes resp.Body's remaining content; callers that
// already deferred resp.Body.Close() can still call this since the second
// Close is a harmless no-op.
func httpBody(resp *http.Response) ([]byte, error) {
	return io.ReadAll(resp.Body)
}
