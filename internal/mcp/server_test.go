package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/txwarden/txwarden/internal/correlate"
	"github.com/txwarden/txwarden/internal/model"
)

func sampleTransfers() []TransferInput {
	return []TransferInput{{To: "0xabc", Data: "0x", Value: "1000"}}
}

func TestSubmitApproved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.SubmitResponse{
			Status:        "success",
			Message:       "transaction APPROVED: no advisory raised",
			CorrelationID: "deadbeef",
		})
	}))
	defer srv.Close()

	s := New(Config{ServerURL: srv.URL})
	result, out, err := s.handleSubmit(context.Background(), &mcpsdk.CallToolRequest{}, SubmitInput{
		Transactions: sampleTransfers(),
		Reason:       "payroll",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatal("expected success, got error result")
	}
	if out.Decision != string(model.Approved) {
		t.Fatalf("decision = %q, want APPROVED", out.Decision)
	}
	if out.CorrelationID != "deadbeef" {
		t.Fatalf("correlation id = %q", out.CorrelationID)
	}
}

func TestSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.SubmitResponse{
			Status:  "success",
			Message: "transaction REJECTED: destination flagged",
		})
	}))
	defer srv.Close()

	s := New(Config{ServerURL: srv.URL})
	result, out, err := s.handleSubmit(context.Background(), &mcpsdk.CallToolRequest{}, SubmitInput{
		Transactions: sampleTransfers(),
		Reason:       "payroll",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Fatal("expected IsError result for rejected transaction")
	}
	if out.Decision != string(model.Rejected) {
		t.Fatalf("decision = %q, want REJECTED", out.Decision)
	}
}

func TestSubmitServerUnreachable(t *testing.T) {
	s := New(Config{ServerURL: "http://127.0.0.1:1"})
	result, out, err := s.handleSubmit(context.Background(), &mcpsdk.CallToolRequest{}, SubmitInput{
		Transactions: sampleTransfers(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Fatal("expected IsError result for unreachable server")
	}
	if out.Status != "error" {
		t.Fatalf("status = %q, want error", out.Status)
	}
}

func TestHashMatchesCorrelate(t *testing.T) {
	s := New(Config{})
	input := HashInput{
		Transactions: sampleTransfers(),
		SafeAddress:  "0xsafe",
		Reason:       "rebalance",
	}

	_, out, err := s.handleHash(context.Background(), &mcpsdk.CallToolRequest{}, input)
	if err != nil {
		t.Fatalf("handleHash: %v", err)
	}

	want, err := correlate.Correlate(model.TransactionRequest{
		Transactions: []model.TransferInstruction{{To: "0xabc", Data: "0x", Value: "1000"}},
		SafeAddress:  "0xsafe",
		Reason:       "rebalance",
	})
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	if out.CorrelationID != want {
		t.Fatalf("hash = %q, want %q", out.CorrelationID, want)
	}
}

func TestHashInvalidRequest(t *testing.T) {
	s := New(Config{})
	_, _, err := s.handleHash(context.Background(), &mcpsdk.CallToolRequest{}, HashInput{})
	if err == nil {
		t.Fatal("expected error for empty transaction list")
	}
}
