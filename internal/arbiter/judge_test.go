package arbiter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func completionServer(t *testing.T, answer string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad judge request body: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Errorf("expected system+user messages, got %d", len(req.Messages))
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": answer}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestHTTPJudgeApproves(t *testing.T) {
	srv := completionServer(t, "YES - override applies")
	defer srv.Close()

	j := NewHTTPJudge(JudgeConfig{APIURL: srv.URL, Model: "test-model", Timeout: 5 * time.Second})
	v, err := j.Judge(context.Background(), Context{Status: "warning", Reason: "proceed despite risk"})
	if err != nil {
		t.Fatal(err)
	}
	if !v.Approved {
		t.Errorf("expected approval, got rationale %q", v.Rationale)
	}
}

func TestHTTPJudgeRejects(t *testing.T) {
	srv := completionServer(t, "NO - no override language present")
	defer srv.Close()

	j := NewHTTPJudge(JudgeConfig{APIURL: srv.URL, Model: "test-model"})
	v, err := j.Judge(context.Background(), Context{Status: "warning", Reason: "send funds"})
	if err != nil {
		t.Fatal(err)
	}
	if v.Approved {
		t.Error("expected rejection")
	}
}

func TestHTTPJudgeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	j := NewHTTPJudge(JudgeConfig{APIURL: srv.URL})
	if _, err := j.Judge(context.Background(), Context{}); err == nil {
		t.Error("expected error on HTTP 503")
	}
}

func TestHTTPJudgeMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	j := NewHTTPJudge(JudgeConfig{APIURL: srv.URL})
	if _, err := j.Judge(context.Background(), Context{}); err == nil {
		t.Error("expected error on empty choices")
	}
}

func TestHTTPJudgeUnconfigured(t *testing.T) {
	j := NewHTTPJudge(JudgeConfig{})
	if _, err := j.Judge(context.Background(), Context{}); err == nil {
		t.Error("expected error when no endpoint configured")
	}
}
