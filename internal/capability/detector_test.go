package capability

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name           string
		accept         string
		fragmentSignal string
		target         string
		want           Capabilities
	}{
		{
			name:   "browser navigation",
			accept: "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			want:   Capabilities{RenderAsDocument: true},
		},
		{
			name:   "api client",
			accept: "application/json",
			want:   Capabilities{},
		},
		{
			name:           "htmx wildcard accept",
			accept:         "*/*",
			fragmentSignal: "true",
			target:         "#item-list",
			want: Capabilities{
				RenderAsDocument: true,
				IsFragmentCall:   true,
				TargetID:         "item-list",
			},
		},
		{
			name:           "fragment signal without wildcard accept",
			accept:         "application/json",
			fragmentSignal: "true",
			target:         "#item-list",
			want: Capabilities{
				IsFragmentCall: true,
				TargetID:       "item-list",
			},
		},
		{
			name:           "fragment signal with empty accept",
			fragmentSignal: "true",
			want: Capabilities{
				RenderAsDocument: true,
				IsFragmentCall:   true,
			},
		},
		{
			name:   "wildcard accept without fragment signal",
			accept: "*/*",
			want:   Capabilities{},
		},
		{
			name:           "target without marker character",
			accept:         "text/html",
			fragmentSignal: "true",
			target:         "sidebar",
			want: Capabilities{
				RenderAsDocument: true,
				IsFragmentCall:   true,
				TargetID:         "sidebar",
			},
		},
		{
			name:   "case insensitive media type",
			accept: "Text/HTML",
			want:   Capabilities{RenderAsDocument: true},
		},
		{
			name: "empty request",
			want: Capabilities{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.accept, tt.fragmentSignal, tt.target)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/inventory/items", nil)
	r.Header.Set("Accept", "*/*")
	r.Header.Set(FragmentHeader, "true")
	r.Header.Set(TargetHeader, "#row-7")

	caps := DetectRequest(r)

	assert.True(t, caps.RenderAsDocument)
	assert.True(t, caps.IsFragmentCall)
	assert.Equal(t, "row-7", caps.TargetID)
}
