package restapi

import (
	"fmt"
	"net/http"
)

const noStoreCacheControl = "no-cache, no-store, must-revalidate"

// CacheControlMiddleware sets Cache-Control for successful responses to
// public caching for maxAgeSeconds, or no-store when it is zero. Error
// responses are never cached.
func CacheControlMiddleware(maxAgeSeconds int, next http.Handler) http.Handler {
	successValue := noStoreCacheControl
	if maxAgeSeconds > 0 {
		successValue = fmt.Sprintf("public, max-age=%d", maxAgeSeconds)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&cacheControlWriter{ResponseWriter: w, successValue: successValue}, r)
	})
}

type cacheControlWriter struct {
	http.ResponseWriter
	successValue string
	wroteHeader  bool
}

func (w *cacheControlWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		value := noStoreCacheControl
		if code >= 200 && code < 300 {
			value = w.successValue
		}
		w.Header().Set("Cache-Control", value)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *cacheControlWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *cacheControlWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
