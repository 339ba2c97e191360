package app

import (
	"crypto/subtle"
	"net/http"
)

func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	key := r.URL.Query().Get("key")
	return app.IsInvalidAPIKey(key)
}

func (app *Application) IsInvalidAPIKey(key string) bool {
	if key == "" {
		return true
	}
	return !containsKey(app.Config.ApiKeys, key)
}

// IsExemptAPIKey reports whether key bypasses rate limiting.
func (app *Application) IsExemptAPIKey(key string) bool {
	return key != "" && containsKey(app.Config.ExemptApiKeys, key)
}

func containsKey(keys []string, key string) bool {
	found := false
	for _, candidate := range keys {
		// constant time, and no early exit
		if subtle.ConstantTimeCompare([]byte(key), []byte(candidate)) == 1 {
			found = true
		}
	}
	return found
}
