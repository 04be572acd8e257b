package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mvahidi/copilot-backend/internal/config"
	"github.com/mvahidi/copilot-backend/internal/entity"
	pkgRetry "github.com/mvahidi/copilot-backend/internal/pkg/retry"
	"go.uber.org/zap"
)

func testConfigs(url string) (config.CompletionConnectorConfig, config.GenerationConfig) {
	connCfg := config.CompletionConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			RequestTimeout:        5 * time.Second,
			ConnTimeout:           5 * time.Second,
			KeepAlive:             time.Minute,
			IdleConnTimeout:       time.Minute,
			ResponseHeaderTimeout: 5 * time.Second,
			Url:                   url,
		},
		CompletionsEndpoint: "/chat/completions",
		Retry:               pkgRetry.RetryConfig{Attempts: 1, Delay: time.Millisecond, MaxDelay: time.Millisecond},
	}
	genCfg := config.GenerationConfig{Model: "test-model", Temperature: 0}
	return connCfg, genCfg
}

func TestConnector_Complete(t *testing.T) {
	var gotReq entity.CompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"the answer"}}]}`))
	}))
	defer server.Close()

	connCfg, genCfg := testConfigs(server.URL)
	conn := NewConnector(connCfg, genCfg, zap.NewNop())

	answer, err := conn.Complete(context.Background(), "be helpful", "what is up?")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if answer != "the answer" {
		t.Errorf("unexpected answer %q", answer)
	}

	if len(gotReq.Messages) != 2 {
		t.Fatalf("expected a single system+user exchange, got %d messages", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != entity.RoleUser {
		t.Errorf("unexpected message roles %q, %q", gotReq.Messages[0].Role, gotReq.Messages[1].Role)
	}
	if gotReq.Temperature != 0 {
		t.Errorf("expected temperature 0, got %g", gotReq.Temperature)
	}
}

func TestConnector_Complete_EmptyAnswerIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":""}}]}`))
	}))
	defer server.Close()

	connCfg, genCfg := testConfigs(server.URL)
	conn := NewConnector(connCfg, genCfg, zap.NewNop())

	answer, err := conn.Complete(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("an empty completion must not be an error: %v", err)
	}
	if answer != "" {
		t.Errorf("expected empty answer, got %q", answer)
	}
}

func TestConnector_Complete_ProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	connCfg, genCfg := testConfigs(server.URL)
	conn := NewConnector(connCfg, genCfg, zap.NewNop())

	if _, err := conn.Complete(context.Background(), "sys", "user"); err == nil {
		t.Error("expected an error on provider failure")
	}
}

func TestConnector_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	connCfg, genCfg := testConfigs(server.URL)
	conn := NewConnector(connCfg, genCfg, zap.NewNop())

	if _, err := conn.Complete(context.Background(), "sys", "user"); err == nil {
		t.Error("expected an error for a response without choices")
	}
}
