package websocket

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCheckOrigin(t *testing.T) {
	publicURL := "https://box.example.com/"

	tests := []struct {
		name          string
		origin        string
		host          string
		isDevelopment bool
		want          bool
	}{
		// Always allowed
		{"empty origin", "", "", false, true},
		{"public origin", "https://box.example.com", "", false, true},
		{"same host as request", "http://127.0.0.1:8080", "127.0.0.1:8080", false, true},

		// Rejected in production
		{"different host", "https://evil.com", "127.0.0.1:8080", false, false},
		{"different port", "https://box.example.com:9090", "", false, false},
		{"http instead of https", "http://box.example.com", "", false, false},

		// Localhost: allowed in dev, rejected in prod
		{"localhost dev", "http://localhost:8080", "", true, true},
		{"127.0.0.1 dev", "http://127.0.0.1:3000", "", true, true},
		{"localhost prod rejected", "http://localhost:3000", "127.0.0.1:8080", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewCheckOrigin(publicURL, tt.isDevelopment)
			r, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/ws", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, checker(r))
		})
	}
}

func TestExtractOrigin(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		want   string
	}{
		{"full URL with path", "https://example.com/box", "https://example.com"},
		{"URL with port", "http://127.0.0.1:8080/", "http://127.0.0.1:8080"},
		{"empty string", "", ""},
		{"no host", "mailto:user@example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractOrigin(tt.rawURL))
		})
	}
}
