package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// passHandler responds 200 "ok".
var passHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("ok")) //nolint:errcheck
})

func callWithKey(t *testing.T, h http.Handler, header, key string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	if key != "" {
		req.Header.Set(header, key)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAPIKey_ModeNone_PassesThrough(t *testing.T) {
	h := APIKey("none", "X-API-Key", "secret", passHandler)
	// No key on the request; should still pass because mode != "apikey".
	if rr := callWithKey(t, h, "X-API-Key", ""); rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}

func TestAPIKey_EmptyKey_FailsClosed(t *testing.T) {
	// apikey mode whose key env var resolved to "" must not open the API.
	h := APIKey("apikey", "X-API-Key", "", passHandler)
	for _, sent := range []string{"", "anything"} {
		if rr := callWithKey(t, h, "X-API-Key", sent); rr.Code != http.StatusUnauthorized {
			t.Errorf("sent %q: status got %d, want 401", sent, rr.Code)
		}
	}
}

func TestAPIKey_CorrectKey_Passes(t *testing.T) {
	h := APIKey("apikey", "X-API-Key", "supersecret", passHandler)
	rr := callWithKey(t, h, "X-API-Key", "supersecret")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Errorf("body: got %q, want ok", rr.Body.String())
	}
}

func TestAPIKey_HeaderCaseInsensitive(t *testing.T) {
	h := APIKey("apikey", "X-API-Key", "supersecret", passHandler)
	if rr := callWithKey(t, h, "x-api-key", "supersecret"); rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}

func TestAPIKey_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		header string
		key    string
	}{
		{"missing key", "X-API-Key", ""},
		{"wrong key", "X-API-Key", "wrong"},
		{"wrong header", "X-Other", "supersecret"},
	}
	h := APIKey("apikey", "X-API-Key", "supersecret", passHandler)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := callWithKey(t, h, tc.header, tc.key)
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want 401", rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type: got %q", ct)
			}
		})
	}
}
