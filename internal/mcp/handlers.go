package mcp

import (
	"context"
	"errors"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/txwarden/txwarden/internal/correlate"
	"github.com/txwarden/txwarden/internal/model"
)

// --- Input/Output types ---

// TransferInput is one outbound transfer within a submission.
type TransferInput struct {
	To    string `json:"to" jsonschema:"destination address"`
	Data  string `json:"data,omitempty" jsonschema:"call data, hex-encoded"`
	Value string `json:"value" jsonschema:"transfer value"`
}

// SubmitInput defines parameters for the txwarden_submit tool.
type SubmitInput struct {
	Transactions []TransferInput `json:"transactions" jsonschema:"transfers to execute"`
	SafeAddress  string          `json:"safe_address,omitempty" jsonschema:"originating safe address"`
	SafeTxHash   string          `json:"safe_tx_hash,omitempty" jsonschema:"precomputed safe transaction hash"`
	Reason       string          `json:"reason" jsonschema:"declared justification; weighed against rater warnings during arbitration"`
}

// SubmitOutput contains the terminal decision.
type SubmitOutput struct {
	Status        string `json:"status"`
	Decision      string `json:"decision,omitempty"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// HashInput defines parameters for the txwarden_hash tool.
type HashInput struct {
	Transactions []TransferInput `json:"transactions" jsonschema:"transfers to hash"`
	SafeAddress  string          `json:"safe_address,omitempty" jsonschema:"originating safe address"`
	SafeTxHash   string          `json:"safe_tx_hash,omitempty" jsonschema:"precomputed safe transaction hash"`
	Reason       string          `json:"reason,omitempty" jsonschema:"declared justification"`
}

// HashOutput contains the correlation id.
type HashOutput struct {
	CorrelationID string `json:"correlation_id"`
}

func toRequest(transfers []TransferInput, safeAddress, safeTxHash, reason string) model.TransactionRequest {
	txs := make([]model.TransferInstruction, len(transfers))
	for i, tr := range transfers {
		txs[i] = model.TransferInstruction{To: tr.To, Data: tr.Data, Value: tr.Value}
	}
	return model.TransactionRequest{
		Transactions: txs,
		SafeAddress:  safeAddress,
		SafeTxHash:   safeTxHash,
		Reason:       reason,
	}
}

// --- Handlers ---

func (s *Server) handleSubmit(ctx context.Context, req *mcpsdk.CallToolRequest, input SubmitInput) (*mcpsdk.CallToolResult, SubmitOutput, error) {
	request := toRequest(input.Transactions, input.SafeAddress, input.SafeTxHash, input.Reason)

	resp, err := s.client.Submit(ctx, request)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, SubmitOutput{}, err
		}
		out := SubmitOutput{Status: "error", Message: err.Error()}
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}

	out := SubmitOutput{
		Status:        resp.Status,
		Message:       resp.Message,
		CorrelationID: resp.CorrelationID,
	}
	if strings.Contains(resp.Message, string(model.Rejected)) {
		out.Decision = string(model.Rejected)
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
	out.Decision = string(model.Approved)
	return nil, out, nil
}

func (s *Server) handleHash(ctx context.Context, req *mcpsdk.CallToolRequest, input HashInput) (*mcpsdk.CallToolResult, HashOutput, error) {
	id, err := correlate.Correlate(toRequest(input.Transactions, input.SafeAddress, input.SafeTxHash, input.Reason))
	if err != nil {
		return nil, HashOutput{}, err
	}
	return nil, HashOutput{CorrelationID: id}, nil
}
