package catalog

import "fmt"

// AuthError reports a failed token exchange or validation call.
type AuthError struct {
	Status int
	Msg    string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Msg, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("auth: %s (status %d)", e.Msg, e.Status)
	}
	return fmt.Sprintf("auth: %s", e.Msg)
}

func (e *AuthError) Unwrap() error { return e.Err }

// CatalogError reports a failed catalog query. It always carries the
// query text and the raw response body; those are the only way to
// debug a query-language mismatch against the remote API.
type CatalogError struct {
	Query  string
	Status int
	Body   string
	Err    error
}

func (e *CatalogError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog: query %q: %v", e.Query, e.Err)
	}
	return fmt.Sprintf("catalog: query %q: status %d: %s", e.Query, e.Status, truncate(e.Body, 500))
}

func (e *CatalogError) Unwrap() error { return e.Err }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
