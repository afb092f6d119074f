package engine

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple", input: "Quantum Computing", want: "quantum-computing"},
		{name: "punctuation collapses", input: "What is Go?!", want: "what-is-go"},
		{name: "leading and trailing noise", input: "  --Hello--  ", want: "hello"},
		{name: "runs of separators", input: "a   b///c", want: "a-b-c"},
		{name: "digits kept", input: "Go 1.22 Release", want: "go-1-22-release"},
		{name: "empty falls back", input: "", want: "page"},
		{name: "only symbols falls back", input: "!!!", want: "page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPageID(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	got := PageID("Quantum Computing", at)

	wantSuffix := "-" + strconv.FormatInt(at.UnixMilli(), 36)
	if !strings.HasPrefix(got, "quantum-computing-") {
		t.Errorf("PageID() = %q, want quantum-computing- prefix", got)
	}
	if !strings.HasSuffix(got, wantSuffix) {
		t.Errorf("PageID() = %q, want %q suffix", got, wantSuffix)
	}

	// Different timestamps yield different ids for the same text
	other := PageID("Quantum Computing", at.Add(time.Second))
	if got == other {
		t.Errorf("PageID() collision across timestamps: %q", got)
	}
}

func TestNewJobID(t *testing.T) {
	at := time.UnixMilli(1700000000000)

	id := newJobID("wiki_page", at)
	if !strings.HasPrefix(id, "job-wiki_page-1700000000000-") {
		t.Errorf("newJobID() = %q, want job-wiki_page-1700000000000- prefix", id)
	}

	// The random suffix keeps same-instant ids distinct
	if other := newJobID("wiki_page", at); other == id {
		t.Errorf("newJobID() collision: %q", id)
	}
}
