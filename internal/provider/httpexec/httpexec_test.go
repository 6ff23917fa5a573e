package httpexec

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/routeforge/gateway/types"
)

func TestExecutor_ExecuteParsesChatCompletion(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret-key" {
			t.Errorf("expected bearer auth header, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: "hi there"}}},
			Model:   "gpt-4",
			Usage:   chatUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		})
	}))
	defer srv.Close()

	t.Setenv("TEST_PROVIDER_KEY", "secret-key")

	cfg := types.ProviderConfig{
		ProviderID:       "test-provider",
		BaseURL:          srv.URL,
		CredentialEnvVar: "TEST_PROVIDER_KEY",
		Cost:             types.CostTable{InputPricePer1K: 0.001, OutputPricePer1K: 0.002},
	}

	exec := New()
	resp, err := exec.Execute(context.Background(), cfg, "gpt-4", "hello", &types.Request{Prompt: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "hi there" {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
	if resp.Tokens.TotalTokens != 15 {
		t.Fatalf("unexpected token count: %d", resp.Tokens.TotalTokens)
	}
}

func TestExecutor_ExecuteMapsNon200ToUpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := types.ProviderConfig{ProviderID: "test-provider", BaseURL: srv.URL}
	exec := New()
	_, err := exec.Execute(context.Background(), cfg, "m", "hello", &types.Request{Prompt: "hello"})
	if err == nil {
		t.Fatalf("expected an error on 500 response")
	}
	gwErr, ok := err.(*types.Error)
	if !ok {
		t.Fatalf("expected *types.Error, got %T", err)
	}
	if gwErr.Code != types.ErrUpstreamError {
		t.Fatalf("expected ErrUpstreamError, got %s", gwErr.Code)
	}
	if !gwErr.Retryable {
		t.Fatalf("expected a 500 to be marked retryable")
	}
}
