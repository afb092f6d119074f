package storage

import (
	"fmt"
	"testing"
)

func TestNormalizeBreadcrumbs(t *testing.T) {
	long := []Breadcrumb{}
	for i := 0; i < 15; i++ {
		long = append(long, Breadcrumb{ID: fmt.Sprintf("p%d", i)})
	}

	tests := []struct {
		name    string
		input   []Breadcrumb
		wantIDs []string
	}{
		{
			name:    "empty",
			input:   nil,
			wantIDs: []string{},
		},
		{
			name:    "single entry",
			input:   []Breadcrumb{{ID: "a"}},
			wantIDs: []string{"a"},
		},
		{
			name:    "consecutive repeats collapse",
			input:   []Breadcrumb{{ID: "a"}, {ID: "a"}, {ID: "b"}, {ID: "b"}, {ID: "a"}},
			wantIDs: []string{"a", "b", "a"},
		},
		{
			name:    "non-consecutive repeats kept",
			input:   []Breadcrumb{{ID: "a"}, {ID: "b"}, {ID: "a"}},
			wantIDs: []string{"a", "b", "a"},
		},
		{
			name:    "capped to most recent",
			input:   long,
			wantIDs: []string{"p5", "p6", "p7", "p8", "p9", "p10", "p11", "p12", "p13", "p14"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeBreadcrumbs(tt.input)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("NormalizeBreadcrumbs() count = %d, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("NormalizeBreadcrumbs()[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestPage_PlaceholderStates(t *testing.T) {
	tests := []struct {
		name           string
		page           Page
		wantGenerating bool
		wantFailed     bool
	}{
		{
			name:           "generating placeholder",
			page:           Page{IsPlaceholder: true, Content: PlaceholderGeneratingContent},
			wantGenerating: true,
		},
		{
			name:       "failed placeholder",
			page:       Page{IsPlaceholder: true, Content: PlaceholderFailedContent},
			wantFailed: true,
		},
		{
			name: "regular page with similar content",
			page: Page{IsPlaceholder: false, Content: "# Generating content in Go"},
		},
		{
			name: "placeholder with real content",
			page: Page{IsPlaceholder: true, Content: "# Topic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.IsGenerating(); got != tt.wantGenerating {
				t.Errorf("IsGenerating() = %v, want %v", got, tt.wantGenerating)
			}
			if got := tt.page.IsFailed(); got != tt.wantFailed {
				t.Errorf("IsFailed() = %v, want %v", got, tt.wantFailed)
			}
		})
	}
}

func TestJobStatus_Terminal(t *testing.T) {
	tests := []struct {
		status JobStatus
		want   bool
	}{
		{JobPending, false},
		{JobProcessing, false},
		{JobCompleted, true},
		{JobFailed, true},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
