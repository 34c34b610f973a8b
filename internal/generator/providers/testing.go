package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// MockResponseConfig holds configuration for mock API responses
type MockResponseConfig struct {
	StatusCode   int
	ResponseBody interface{}
	Headers      map[string]string
	// OnRequest, when set, sees every request before the response is written.
	OnRequest func(r *http.Request)
}

// MockServer creates a test server that returns the configured response
func MockServer(t *testing.T, config MockResponseConfig) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if config.OnRequest != nil {
			config.OnRequest(r)
		}
		for k, v := range config.Headers {
			w.Header().Set(k, v)
		}
		if _, exists := config.Headers["Content-Type"]; !exists {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(config.StatusCode)

		if config.ResponseBody == nil {
			return
		}
		var respBytes []byte
		switch body := config.ResponseBody.(type) {
		case string:
			respBytes = []byte(body)
		case []byte:
			respBytes = body
		default:
			var err error
			respBytes, err = json.Marshal(body)
			if err != nil {
				t.Errorf("Failed to marshal mock response: %v", err)
				return
			}
		}
		if _, err := w.Write(respBytes); err != nil {
			t.Errorf("Failed to write response body: %v", err)
		}
	}))
}

// TestProvider is a simple implementation of LLMProvider for testing
type TestProvider struct {
	name         string
	returnError  error
	returnString string
}

// NewTestProvider creates a new TestProvider
func NewTestProvider(name string, returnString string, returnError error) *TestProvider {
	return &TestProvider{
		name:         name,
		returnString: returnString,
		returnError:  returnError,
	}
}

// Name returns the provider name
func (p *TestProvider) Name() string {
	return p.name
}

// Generate returns the configured string or error
func (p *TestProvider) Generate(_ context.Context, _ Prompt) (string, error) {
	return p.returnString, p.returnError
}

// CapturingProvider is a provider that records its inputs for testing. It
// fails the first failures calls before answering.
type CapturingProvider struct {
	name         string
	returnError  error
	returnString string
	failures     int

	mu       sync.Mutex
	calls    int
	captured []Prompt
}

// NewCapturingProvider creates a new CapturingProvider
func NewCapturingProvider(name, returnString string, returnError error) *CapturingProvider {
	return &CapturingProvider{
		name:         name,
		returnString: returnString,
		returnError:  returnError,
	}
}

// FailFirst makes the next n calls fail with the configured error.
func (p *CapturingProvider) FailFirst(n int) *CapturingProvider {
	p.failures = n
	return p
}

// Name returns the provider name
func (p *CapturingProvider) Name() string {
	return p.name
}

// Generate captures inputs and returns configured response
func (p *CapturingProvider) Generate(ctx context.Context, prompt Prompt) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	p.captured = append(p.captured, prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.calls <= p.failures {
		return "", p.returnError
	}
	if p.failures == 0 && p.returnError != nil {
		return "", p.returnError
	}
	return p.returnString, nil
}

// Calls returns how many times Generate was called.
func (p *CapturingProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// LastPrompt returns the most recent prompt passed to Generate.
func (p *CapturingProvider) LastPrompt() Prompt {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.captured) == 0 {
		return Prompt{}
	}
	return p.captured[len(p.captured)-1]
}
