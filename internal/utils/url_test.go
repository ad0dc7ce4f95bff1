package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"adds scheme", "example.com/apps.json", "https://example.com/apps.json"},
		{"lowercases host", "https://EXAMPLE.com/Apps.json", "https://example.com/Apps.json"},
		{"drops default https port", "https://example.com:443/a", "https://example.com/a"},
		{"drops default http port", "http://example.com:80/a", "http://example.com/a"},
		{"keeps custom port", "http://localhost:8080/a", "http://localhost:8080/a"},
		{"root gets slash", "https://example.com", "https://example.com/"},
		{"strips fragment", "https://example.com/a#frag", "https://example.com/a"},
		{"keeps query", "https://example.com/a?x=1", "https://example.com/a?x=1"},
		{"cleans path", "https://example.com/a/../b/./c.json", "https://example.com/b/c.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("invalid url", func(t *testing.T) {
		_, err := NormalizeURL("https://exa mple.com/%zz")
		assert.Error(t, err)
	})
}

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, IsHTTPURL("https://example.com/apps.json"))
	assert.True(t, IsHTTPURL("http://localhost:8080"))
	assert.False(t, IsHTTPURL("ftp://example.com"))
	assert.False(t, IsHTTPURL("example.com/apps.json"))
	assert.False(t, IsHTTPURL("https://"))
	assert.False(t, IsHTTPURL("::not a url"))
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "example.com", HostOf("https://example.com/apps.json"))
	assert.Equal(t, "localhost:8080", HostOf("http://localhost:8080/x"))
	assert.Equal(t, "not-a-url", HostOf("not-a-url"))
}
