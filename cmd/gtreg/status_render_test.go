package main

import (
	"strings"
	"testing"
)

func TestOutcomeKind(t *testing.T) {
	tests := []struct {
		status string
		want   statusKind
	}{
		{"succeeded", statusOK},
		{"needs_review", statusWarn},
		{"failed", statusError},
		{"valid", statusInfo},
	}
	for _, tt := range tests {
		if got := outcomeKind(tt.status); got != tt.want {
			t.Errorf("outcomeKind(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestRenderStatusColorsByOutcome(t *testing.T) {
	if got := renderStatus("failed", false); got != "failed" {
		t.Fatalf("plain status should be unchanged, got %q", got)
	}
	got := renderStatus("needs_review", true)
	if !strings.HasPrefix(got, ansiYellow) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected yellow review status, got %q", got)
	}
	if got := renderStatus("failed", true); !strings.HasPrefix(got, ansiRed) {
		t.Fatalf("expected red failed status, got %q", got)
	}
}
