package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tokenServer(t *testing.T, exchanges *atomic.Int64, expiresIn int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		if got := r.PostFormValue("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q, want client_credentials", got)
		}
		if got := r.PostFormValue("client_id"); got != "test-client" {
			t.Errorf("client_id = %q, want test-client", got)
		}
		n := exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","expires_in":%d,"token_type":"bearer"}`, n, expiresIn)
	}))
}

func TestAccessTokenCaching(t *testing.T) {
	var exchanges atomic.Int64
	srv := tokenServer(t, &exchanges, 3600)
	defer srv.Close()

	p := NewTokenProvider(srv.URL, "test-client", "test-secret", testLogger())

	first, err := p.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken() error = %v", err)
	}
	if first != "token-1" {
		t.Errorf("token = %q, want token-1", first)
	}

	second, err := p.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken() error = %v", err)
	}
	if second != first {
		t.Errorf("second call returned %q, want cached %q", second, first)
	}
	if got := exchanges.Load(); got != 1 {
		t.Errorf("exchanges = %d, want 1", got)
	}
}

func TestAccessTokenExpiryBuffer(t *testing.T) {
	// A lifetime shorter than the expiry buffer means the cached token
	// is already considered expired, so every call re-exchanges.
	var exchanges atomic.Int64
	srv := tokenServer(t, &exchanges, 200)
	defer srv.Close()

	p := NewTokenProvider(srv.URL, "test-client", "test-secret", testLogger())

	for i := 0; i < 2; i++ {
		if _, err := p.AccessToken(context.Background()); err != nil {
			t.Fatalf("AccessToken() error = %v", err)
		}
	}
	if got := exchanges.Load(); got != 2 {
		t.Errorf("exchanges = %d, want 2", got)
	}
}

func TestAccessTokenFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad credentials", http.StatusForbidden)
			},
		},
		{
			name: "missing access_token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"expires_in":3600,"token_type":"bearer"}`)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `not json`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			p := NewTokenProvider(srv.URL, "test-client", "test-secret", testLogger())
			_, err := p.AccessToken(context.Background())
			if err == nil {
				t.Fatal("AccessToken() error = nil, want AuthError")
			}
			var authErr *AuthError
			if !errors.As(err, &authErr) {
				t.Errorf("error = %v, want *AuthError", err)
			}
		})
	}
}

func TestAccessTokenFailureLeavesCacheRetryable(t *testing.T) {
	var exchanges atomic.Int64
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		n := exchanges.Add(1)
		fmt.Fprintf(w, `{"access_token":"token-%d","expires_in":3600}`, n)
	}))
	defer srv.Close()

	p := NewTokenProvider(srv.URL, "test-client", "test-secret", testLogger())

	if _, err := p.AccessToken(context.Background()); err == nil {
		t.Fatal("expected failure while endpoint is down")
	}

	fail.Store(false)
	token, err := p.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken() after recovery error = %v", err)
	}
	if token != "token-1" {
		t.Errorf("token = %q, want token-1", token)
	}
}

func TestAccessTokenSingleFlight(t *testing.T) {
	var exchanges atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		time.Sleep(50 * time.Millisecond) // widen the race window
		fmt.Fprint(w, `{"access_token":"shared-token","expires_in":3600}`)
	}))
	defer srv.Close()

	p := NewTokenProvider(srv.URL, "test-client", "test-secret", testLogger())

	const callers = 20
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = p.AccessToken(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d error = %v", i, errs[i])
		}
		if tokens[i] != "shared-token" {
			t.Errorf("caller %d token = %q, want shared-token", i, tokens[i])
		}
	}
	if got := exchanges.Load(); got != 1 {
		t.Errorf("exchanges = %d, want exactly 1", got)
	}
}

func TestValidateToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/validate" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") == "Bearer good-token" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewTokenProvider(srv.URL, "test-client", "test-secret", testLogger())

	if !p.ValidateToken(context.Background(), "good-token") {
		t.Error("ValidateToken(good-token) = false, want true")
	}
	if p.ValidateToken(context.Background(), "bad-token") {
		t.Error("ValidateToken(bad-token) = true, want false")
	}

	// Transport errors report false, never an error.
	srv.Close()
	if p.ValidateToken(context.Background(), "good-token") {
		t.Error("ValidateToken() after server close = true, want false")
	}
}
