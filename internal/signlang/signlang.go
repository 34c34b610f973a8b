// Package signlang converts summaries into sign language data, either with a
// built-in placeholder or through a remote translation API.
package signlang

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/localrivet/textsummarizer/internal/errortypes"
)

// PlaceholderGestures is returned by the stub translator.
const PlaceholderGestures = "Sign language gesture data would go here"

// DefaultTimeout bounds remote translation calls.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a remote response is read.
const maxResponseBytes = 4 << 20

// Translation is the sign language rendering of a text.
type Translation struct {
	Status           string         `json:"status"`
	SignLanguageData map[string]any `json:"sign_language_data"`
}

// Translator converts text into sign language data.
type Translator interface {
	Translate(ctx context.Context, text string) (*Translation, error)
	Name() string
}

// StubTranslator echoes the text with placeholder gesture data.
type StubTranslator struct{}

// Name implements Translator.
func (StubTranslator) Name() string { return "stub" }

// Translate implements Translator.
func (StubTranslator) Translate(_ context.Context, text string) (*Translation, error) {
	return &Translation{
		Status: "success",
		SignLanguageData: map[string]any{
			"text":     text,
			"gestures": PlaceholderGestures,
		},
	}, nil
}

// HTTPTranslator posts text to a sign language API.
type HTTPTranslator struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPTranslator creates a translator for endpoint. A zero timeout means DefaultTimeout.
func NewHTTPTranslator(endpoint, apiKey string, timeout time.Duration) *HTTPTranslator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPTranslator{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name implements Translator.
func (t *HTTPTranslator) Name() string { return "http" }

// Translate implements Translator. The decoded JSON response becomes the
// translation's data.
func (t *HTTPTranslator) Translate(ctx context.Context, text string) (*Translation, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, errortypes.ProcessingError(err, "failed to encode sign language request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errortypes.ConfigError(err, "invalid sign language endpoint").WithField("endpoint", t.endpoint)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, errortypes.NetworkError(err, "sign language API unreachable").WithField("endpoint", t.endpoint)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errortypes.NetworkError(err, "failed to read sign language response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errortypes.ExternalError(fmt.Errorf("status %d", resp.StatusCode), "sign language API error").
			WithField("status", resp.StatusCode)
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errortypes.ExternalError(err, "sign language API returned invalid JSON")
	}
	if data == nil {
		return nil, errortypes.ExternalError(errors.New("empty body"), "sign language API returned no data")
	}
	return &Translation{Status: "success", SignLanguageData: data}, nil
}

// New returns an HTTPTranslator when endpoint is set and the stub otherwise.
func New(endpoint, apiKey string, timeout time.Duration) Translator {
	if endpoint == "" {
		return StubTranslator{}
	}
	return NewHTTPTranslator(endpoint, apiKey, timeout)
}
