// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package httpexec implements a generic JSON-over-HTTP provider.Executor for
any OpenAI-compatible chat completions endpoint. It is configured purely
from types.ProviderConfig — base URL, a credential environment variable
name, and a timeout — with no vendor-specific branching, so registering a
new OpenAI-compatible provider takes no code change, only a new
ProviderConfig.

Grounded on the teacher's llm/providers/openaicompat.Provider, which is
itself the shared base every OpenAI-compatible adapter in that repo
embeds (DeepSeek, Qwen, GLM, Grok, Doubao, MiniMax); this package keeps
that adapter's request/response shape and Bearer-token header
convention but drops the streaming/SSE and tool-calling paths, which are
out of this core's scope.
*/
package httpexec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/routeforge/gateway/types"
)

// Executor calls any OpenAI-compatible /v1/chat/completions endpoint.
type Executor struct {
	Client *http.Client
}

// New creates an Executor with a sensible default http.Client. Pass a
// pre-built client (with custom transport, proxying, etc.) via the
// exported field if needed.
func New() *Executor {
	return &Executor{Client: http.DefaultClient}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Model   string       `json:"model"`
	Usage   chatUsage    `json:"usage"`
}

// Execute POSTs an OpenAI-compatible chat completion request built from
// cfg and req, and maps the response back into a types.ProviderResponse.
func (e *Executor) Execute(ctx context.Context, cfg types.ProviderConfig, model, prompt string, req *types.Request) (*types.ProviderResponse, error) {
	body := chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "failed to encode provider request").WithCause(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "failed to build provider request").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if cfg.CredentialEnvVar != "" {
		if key := os.Getenv(cfg.CredentialEnvVar); key != "" {
			httpReq.Header.Set("Authorization", "Bearer "+key)
		}
	}

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamTimeout, "provider request failed").WithProvider(cfg.ProviderID).WithCause(err).WithRetryable(true)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "failed to read provider response").WithProvider(cfg.ProviderID).WithCause(err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, types.NewError(types.ErrUpstreamError, fmt.Sprintf("provider returned status %d", httpResp.StatusCode)).
			WithProvider(cfg.ProviderID).WithRetryable(httpResp.StatusCode >= 500)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "failed to decode provider response").WithProvider(cfg.ProviderID).WithCause(err)
	}
	if len(parsed.Choices) == 0 {
		return nil, types.NewError(types.ErrUpstreamError, "provider returned no choices").WithProvider(cfg.ProviderID)
	}

	content := parsed.Choices[0].Message.Content

	tokens := types.TokenCounts{
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
		TotalTokens:      parsed.Usage.TotalTokens,
	}
	if tokens.TotalTokens == 0 {
		// Some OpenAI-compatible endpoints omit the usage block entirely.
		// Truth up the count with a real BPE tokenizer rather than billing
		// the request at zero tokens; this never feeds routing decisions,
		// which stay on the chars/4 estimator in internal/complexity.
		tokens = truthUpUsage(prompt, content)
	}

	return &types.ProviderResponse{
		Content:    content,
		Model:      parsed.Model,
		ProviderID: cfg.ProviderID,
		Tokens:     tokens,
		CostUSD:    estimateCost(cfg, tokens),
	}, nil
}

func estimateCost(cfg types.ProviderConfig, tokens types.TokenCounts) float64 {
	input := float64(tokens.PromptTokens) / 1000 * cfg.Cost.InputPricePer1K
	output := float64(tokens.CompletionTokens) / 1000 * cfg.Cost.OutputPricePer1K
	return input + output
}

var (
	truthUpOnce sync.Once
	truthUpEnc  *tiktoken.Tiktoken
	truthUpErr  error
)

// truthUpEncoding lazily loads the cl100k_base BPE encoding, mirroring
// the teacher's llm/tokenizer.TiktokenTokenizer's once-guarded init.
func truthUpEncoding() (*tiktoken.Tiktoken, error) {
	truthUpOnce.Do(func() {
		truthUpEnc, truthUpErr = tiktoken.GetEncoding("cl100k_base")
	})
	return truthUpEnc, truthUpErr
}

// truthUpUsage estimates prompt/completion token counts with a real
// tokenizer when a provider reports none. Falls back to chars/4 if the
// encoding can't be loaded (e.g. no network access to fetch BPE ranks).
func truthUpUsage(prompt, completion string) types.TokenCounts {
	enc, err := truthUpEncoding()
	if err != nil {
		promptTokens := len(prompt) / 4
		completionTokens := len(completion) / 4
		return types.TokenCounts{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		}
	}

	promptTokens := len(enc.Encode(prompt, nil, nil))
	completionTokens := len(enc.Encode(completion, nil, nil))
	return types.TokenCounts{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}
}
