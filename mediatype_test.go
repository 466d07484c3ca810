package bodyparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		contentType string
		patterns    []string
		want        bool
	}{
		{"application/json", []string{"json"}, true},
		{"application/json; charset=utf-8", []string{"json"}, true},
		{"APPLICATION/JSON", []string{"application/json"}, true},
		{"application/json-patch+json", []string{"application/*+json"}, true},
		{"application/vnd.api+json", []string{"application/*+json"}, true},
		{"application/ld+json", []string{"+json"}, true},
		{"application/csp-report", []string{"application/csp-report"}, true},
		{"application/x-www-form-urlencoded", []string{"urlencoded"}, true},
		{"text/plain", []string{"text/*"}, true},
		{"text/html", []string{"text/*"}, true},
		{"text/html", []string{"html"}, true},
		{"application/graphql", []string{"text/html", "application/graphql"}, true},
		{"image/png", []string{"*/*"}, true},
		{"application/xml", []string{"json", "urlencoded"}, false},
		{"text/plain", []string{"json"}, false},
		{"application/jsonx", []string{"json"}, false},
		{"text/plain+json", []string{"application/*+json"}, false},
		{"", []string{"*/*"}, false},
		{"not a media type", []string{"*/*"}, false},
		{"application/json", nil, false},
		{"application/json", []string{""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.contentType, tt.patterns), "patterns %v", tt.patterns)
		})
	}
}
