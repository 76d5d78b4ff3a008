package playtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLookupNeverFails(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		handler http.HandlerFunc
	}{
		{
			name:  "blank title",
			title: "   ",
			handler: func(w http.ResponseWriter, r *http.Request) {
				t.Error("request issued for blank title")
			},
		},
		{
			name:  "non-success status",
			title: "Hollow Knight",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream down", http.StatusBadGateway)
			},
		},
		{
			name:  "empty body",
			title: "Hollow Knight",
			handler: func(w http.ResponseWriter, r *http.Request) {
				// 200 with nothing in it.
			},
		},
		{
			name:  "empty result set",
			title: "Hollow Knight",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `[]`)
			},
		},
		{
			name:  "malformed JSON",
			title: "Hollow Knight",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"oops`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, testLogger())
			if got := c.Lookup(context.Background(), tt.title); got != nil {
				t.Errorf("Lookup() = %+v, want nil", got)
			}
		})
	}

	t.Run("transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection refused from here on

		c := NewClient(srv.URL, testLogger())
		if got := c.Lookup(context.Background(), "Hollow Knight"); got != nil {
			t.Errorf("Lookup() = %+v, want nil", got)
		}
	})
}

func TestLookupEncodesTitle(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("title")
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	c.Lookup(context.Background(), "NieR:Automata & Friends")
	if gotQuery != "NieR:Automata & Friends" {
		t.Errorf("decoded title = %q", gotQuery)
	}
}

func TestLookupMatching(t *testing.T) {
	body := `[
		{"id":10,"title":"Hollow Knight: Silksong","main":43200},
		{"id":11,"title":"hollow knight","main":90000},
		{"id":12,"title":"Hollow Knight Demo","main":3600}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())

	t.Run("case-insensitive exact match wins", func(t *testing.T) {
		got := c.Lookup(context.Background(), "Hollow Knight")
		if got == nil || got.ID != 11 {
			t.Fatalf("Lookup() = %+v, want record 11", got)
		}
		if got.MainSeconds != 90000 {
			t.Errorf("MainSeconds = %d, want 90000", got.MainSeconds)
		}
	})

	t.Run("falls back to first record", func(t *testing.T) {
		got := c.Lookup(context.Background(), "Hollow")
		if got == nil || got.ID != 10 {
			t.Fatalf("Lookup() = %+v, want first record", got)
		}
	})
}
