package dispatch

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/txwarden/txwarden/internal/model"
)

func sampleRequest() model.TransactionRequest {
	return model.TransactionRequest{
		Transactions: []model.TransferInstruction{{To: "0xAA", Data: "0x", Value: "1"}},
		SafeAddress:  "0xSafe",
		Reason:       "test",
	}
}

func TestSendPostsTransactionAndWarning(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := New(Config{URL: srv.URL, Timeout: 5 * time.Second})
	w := &model.Warning{CorrelationID: "id-1", Message: "flagged address"}
	if err := b.Send(sampleRequest(), w); err != nil {
		t.Fatal(err)
	}

	if got.Transaction.SafeAddress != "0xSafe" {
		t.Errorf("transaction not carried: %+v", got.Transaction)
	}
	if got.Warning == nil || *got.Warning != "flagged address" {
		t.Errorf("warning not carried: %v", got.Warning)
	}
}

func TestSendNilWarningSerializedAsNull(t *testing.T) {
	var raw map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := New(Config{URL: srv.URL})
	if err := b.Send(sampleRequest(), nil); err != nil {
		t.Fatal(err)
	}
	if string(raw["warning"]) != "null" {
		t.Errorf("expected warning null, got %s", raw["warning"])
	}
}

func TestSendRetriesOnServerError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := New(Config{URL: srv.URL})
	if err := b.Send(sampleRequest(), nil); err != nil {
		t.Errorf("expected success after retries, got: %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestSendNoRetryOnClientError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	b := New(Config{URL: srv.URL})
	if err := b.Send(sampleRequest(), nil); err == nil {
		t.Error("expected delivery error on 400")
	}
	if attempts.Load() != 1 {
		t.Errorf("expected 1 attempt (no retry on 4xx), got %d", attempts.Load())
	}
}

func TestSendUnreachableEndpoint(t *testing.T) {
	b := New(Config{URL: "http://127.0.0.1:1", Timeout: 100 * time.Millisecond})
	if err := b.Send(sampleRequest(), nil); err == nil {
		t.Error("expected delivery error for unreachable endpoint")
	}
}

func TestSendUnconfigured(t *testing.T) {
	b := New(Config{})
	if err := b.Send(sampleRequest(), nil); err == nil {
		t.Error("expected error when no endpoint configured")
	}
}
