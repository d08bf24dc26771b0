package triage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHTTPClassifier_FlakeySentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("FALSE")) //nolint:errcheck
	}))
	defer server.Close()

	c := NewHTTPClassifier(server.URL, time.Second, nil)
	assert.Equal(t, VerdictFlakey, c.Classify(context.Background(), "test_aes"))
}

func TestHTTPClassifier_NonSentinelBodies(t *testing.T) {
	// The sentinel is exact and case-sensitive; everything else is stable.
	tests := []struct {
		name string
		body string
	}{
		{"true", "TRUE"},
		{"lowercase false", "false"},
		{"sentinel with newline", "FALSE\n"},
		{"sentinel with padding", " FALSE"},
		{"empty body", ""},
		{"unrelated body", "not a verdict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body)) //nolint:errcheck
			}))
			defer server.Close()

			c := NewHTTPClassifier(server.URL, time.Second, nil)
			assert.Equal(t, VerdictStable, c.Classify(context.Background(), "test_aes"))
		})
	}
}

func TestHTTPClassifier_ServerError(t *testing.T) {
	// A 500 carrying the sentinel is still not an explicit negative signal.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("FALSE")) //nolint:errcheck
	}))
	defer server.Close()

	c := NewHTTPClassifier(server.URL, time.Second, nil)
	assert.Equal(t, VerdictStable, c.Classify(context.Background(), "test_aes"))
}

func TestHTTPClassifier_Unreachable(t *testing.T) {
	// Grab a URL that is guaranteed to refuse connections.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewHTTPClassifier(url, time.Second, nil)
	assert.Equal(t, VerdictStable, c.Classify(context.Background(), "test_aes"))
}

func TestHTTPClassifier_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte("FALSE")) //nolint:errcheck
	}))
	defer server.Close()

	c := NewHTTPClassifier(server.URL, 50*time.Millisecond, nil)
	assert.Equal(t, VerdictStable, c.Classify(context.Background(), "test_aes"))
}

func TestHTTPClassifier_DefaultTimeout(t *testing.T) {
	c := NewHTTPClassifier("http://localhost:8000/", 0, nil)
	assert.Equal(t, DefaultClassifierTimeout, c.client.Timeout)
}

func TestStaticClassifier(t *testing.T) {
	assert.Equal(t, VerdictStable, StaticClassifier(VerdictStable).Classify(context.Background(), "test_a"))
	assert.Equal(t, VerdictFlakey, StaticClassifier(VerdictFlakey).Classify(context.Background(), "test_a"))
}
