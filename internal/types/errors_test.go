package types

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorWrapping(t *testing.T) {
	fe := &FetchError{URL: "https://example.com", StatusCode: 503, Err: ErrEmptyResponse}
	pe := &PipelineError{Stage: "listing", Err: fe}

	if !errors.Is(pe, ErrEmptyResponse) {
		t.Error("errors.Is should see through both wrappers")
	}

	var gotFetch *FetchError
	if !errors.As(pe, &gotFetch) {
		t.Fatal("errors.As should find the FetchError inside the PipelineError")
	}
	if gotFetch.StatusCode != 503 {
		t.Errorf("status = %d", gotFetch.StatusCode)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			"fetch with status",
			&FetchError{URL: "https://x.test/p", StatusCode: 404, Err: errors.New("not found")},
			[]string{"https://x.test/p", "404"},
		},
		{
			"fetch without status",
			&FetchError{URL: "https://x.test/p", Err: errors.New("refused")},
			[]string{"https://x.test/p", "refused"},
		},
		{
			"parse",
			&ParseError{URL: "https://x.test", Selector: "div.card", Err: ErrNoPrice},
			[]string{"div.card", "price node"},
		},
		{
			"storage",
			&StorageError{Backend: "csv", Err: errors.New("disk full")},
			[]string{"csv", "disk full"},
		},
		{
			"pipeline",
			&PipelineError{Stage: "persist", Err: errors.New("boom")},
			[]string{"persist", "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.want {
				if !strings.Contains(msg, want) {
					t.Errorf("%q missing %q", msg, want)
				}
			}
		})
	}
}
