package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// APIKey wraps next with API key authentication.
//
// Behaviour:
//   - If mode != "apikey", all requests are allowed (pass-through).
//   - Otherwise the value of header must equal key. An empty key rejects
//     every request.
//   - A missing, empty, or incorrect key returns 401 with a JSON error body.
func APIKey(mode, header, key string, next http.Handler) http.Handler {
	if mode != "apikey" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(header)
		if key == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid api key"}) //nolint:errcheck
			return
		}
		next.ServeHTTP(w, r)
	})
}
