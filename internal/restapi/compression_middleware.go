package restapi

import (
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// NewCompressionMiddleware gzips responses of at least minSize bytes for
// clients that accept it.
func NewCompressionMiddleware(minSize int) (func(http.Handler) http.Handler, error) {
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(minSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip wrapper: %w", err)
	}
	return func(next http.Handler) http.Handler {
		return wrap(next)
	}, nil
}
