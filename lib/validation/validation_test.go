package validation

import (
	"strings"
	"testing"
)

func TestParseExternalID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"1942", 1942, false},
		{"1", 1, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseExternalID(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseExternalID(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseExternalID(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestValidateSearchTerm(t *testing.T) {
	if err := ValidateSearchTerm("a"); err == nil {
		t.Error("one-character term accepted")
	}
	if err := ValidateSearchTerm(strings.Repeat("x", 201)); err == nil {
		t.Error("oversized term accepted")
	}
	if err := ValidateSearchTerm("hollow knight"); err != nil {
		t.Errorf("valid term rejected: %v", err)
	}
}

func TestValidateLimit(t *testing.T) {
	for _, limit := range []int{0, -1, 101} {
		if err := ValidateLimit(limit); err == nil {
			t.Errorf("ValidateLimit(%d) = nil, want error", limit)
		}
	}
	for _, limit := range []int{1, 20, 100} {
		if err := ValidateLimit(limit); err != nil {
			t.Errorf("ValidateLimit(%d) = %v, want nil", limit, err)
		}
	}
}
