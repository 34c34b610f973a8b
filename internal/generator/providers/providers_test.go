package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestOpenAIProviderGenerate(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any
	server := MockServer(t, MockResponseConfig{
		StatusCode: http.StatusOK,
		ResponseBody: map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "  Solar power is energy from the sun.  "},
			}},
		},
		OnRequest: func(r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
		},
	})
	defer server.Close()

	p := NewOpenAIProvider(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1/"})
	got, err := p.Generate(context.Background(), Prompt{System: "be helpful", User: "explain solar power"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Solar power is energy from the sun." {
		t.Errorf("Generate() = %q", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if !strings.HasSuffix(gotPath, "/chat/completions") {
		t.Errorf("path = %q, want chat completions endpoint", gotPath)
	}
	if gotBody["model"] != DefaultOpenAIModel {
		t.Errorf("model = %v, want %s", gotBody["model"], DefaultOpenAIModel)
	}
	if msgs, ok := gotBody["messages"].([]any); !ok || len(msgs) != 2 {
		t.Errorf("messages = %v, want system and user", gotBody["messages"])
	}
}

func TestOpenAIProviderErrors(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}).Generate(context.Background(), Prompt{User: "x"}); err == nil {
		t.Error("expected error without API key")
	}

	server := MockServer(t, MockResponseConfig{
		StatusCode:   http.StatusInternalServerError,
		ResponseBody: `{"error":{"message":"boom","type":"server_error"}}`,
	})
	defer server.Close()

	p := NewOpenAIProvider(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1/"})
	if _, err := p.Generate(context.Background(), Prompt{User: "x"}); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestAnthropicProviderGenerate(t *testing.T) {
	var gotKey, gotVersion string
	var gotBody anthropicRequest
	server := MockServer(t, MockResponseConfig{
		StatusCode: http.StatusOK,
		ResponseBody: map[string]any{
			"content": []map[string]string{{"type": "text", "text": "Wind turbines convert wind into electricity."}},
		},
		OnRequest: func(r *http.Request) {
			gotKey = r.Header.Get("X-API-Key")
			gotVersion = r.Header.Get("Anthropic-Version")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
		},
	})
	defer server.Close()

	p := NewAnthropicProvider(Config{APIKey: "ak-test", BaseURL: server.URL})
	got, err := p.Generate(context.Background(), Prompt{System: "sys", User: "explain wind power"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Wind turbines convert wind into electricity." {
		t.Errorf("Generate() = %q", got)
	}
	if gotKey != "ak-test" || gotVersion != anthropicVersion {
		t.Errorf("headers = %q, %q", gotKey, gotVersion)
	}
	if gotBody.System != "sys" || gotBody.Model != DefaultAnthropicModel || len(gotBody.Messages) != 1 {
		t.Errorf("unexpected request body: %+v", gotBody)
	}
}

func TestAnthropicProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
	}{
		{name: "api error", status: http.StatusBadRequest, body: `{"error":{"type":"invalid_request_error","message":"bad"}}`},
		{name: "empty content", status: http.StatusOK, body: `{"content":[]}`},
		{name: "not json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := MockServer(t, MockResponseConfig{StatusCode: test.status, ResponseBody: test.body})
			defer server.Close()

			p := NewAnthropicProvider(Config{APIKey: "ak-test", BaseURL: server.URL})
			if _, err := p.Generate(context.Background(), Prompt{User: "x"}); err == nil {
				t.Error("Generate() error = nil, want error")
			}
		})
	}
}

func TestProviderFactory(t *testing.T) {
	factory := NewProviderFactory(map[string]Config{
		ProviderOpenAI:    {APIKey: "sk"},
		ProviderAnthropic: {APIKey: "ak"},
		"unknown":         {APIKey: "x"},
	})

	p, err := factory.GetProvider(ProviderAnthropic)
	if err != nil || p.Name() != ProviderAnthropic {
		t.Fatalf("GetProvider(anthropic) = %v, %v", p, err)
	}
	if _, err := factory.GetProvider("missing"); err == nil {
		t.Error("expected error for unconfigured provider")
	}
	if _, err := factory.GetProvider("unknown"); err == nil {
		t.Error("expected error for unknown provider")
	}

	chain := factory.GetProviderChain([]string{ProviderOpenAI})
	if len(chain) != 2 || chain[0].Name() != ProviderOpenAI || chain[1].Name() != ProviderAnthropic {
		names := make([]string, len(chain))
		for i, c := range chain {
			names[i] = c.Name()
		}
		t.Errorf("GetProviderChain() = %v, want [openai anthropic]", names)
	}

	noKeys := NewProviderFactory(map[string]Config{ProviderOpenAI: {}})
	if chain := noKeys.GetProviderChain(nil); len(chain) != 0 {
		t.Errorf("providers without keys should be skipped, got %d", len(chain))
	}
}
