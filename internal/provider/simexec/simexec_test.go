package simexec

import (
	"context"
	"testing"

	"github.com/routeforge/gateway/types"
)

func TestExecutor_SucceedsByDefault(t *testing.T) {
	t.Parallel()
	exec := New()
	resp, err := exec.Execute(context.Background(), types.ProviderConfig{ProviderID: "p1"}, "m1", "hello world", &types.Request{Prompt: "hello world"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ProviderID != "p1" || resp.Model != "m1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestExecutor_FailsForListedProviders(t *testing.T) {
	t.Parallel()
	exec := New("p1")
	_, err := exec.Execute(context.Background(), types.ProviderConfig{ProviderID: "p1"}, "m1", "hello", &types.Request{Prompt: "hello"})
	if err == nil {
		t.Fatalf("expected simulated failure for p1")
	}
}
