package mcp

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

var (
	errMissingAPIKey = errors.New("missing API key")
	errInvalidAPIKey = errors.New("invalid API key")
)

// authenticate accepts "Authorization: Bearer <key>" or "X-API-Key: <key>"
func authenticate(r *http.Request, apiKey string) error {
	key := r.Header.Get("Authorization")
	if key == "" {
		key = r.Header.Get("X-API-Key")
	}
	key = strings.TrimPrefix(key, "Bearer ")

	if key == "" {
		return errMissingAPIKey
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
		return errInvalidAPIKey
	}
	return nil
}

func apiKeyMiddleware(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodOptions {
			if err := authenticate(r, apiKey); err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
