package model

import (
	"errors"
	"fmt"
	"time"
)

// Status is the terminal arbitration outcome for a transaction.
type Status string

const (
	Approved Status = "APPROVED"
	Rejected Status = "REJECTED"
)

// TransferInstruction is one outbound transfer within a transaction request.
// Address and value formats are chain-specific and opaque here.
type TransferInstruction struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
}

// TransactionRequest is the immutable admission request submitted at ingress.
// Reason carries override authority: it is the declared justification that
// arbitration weighs against a rater warning.
type TransactionRequest struct {
	Transactions []TransferInstruction `json:"transactions"`
	SafeAddress  string                `json:"safeAddress"`
	SafeTxHash   string                `json:"safeTxHash,omitempty"`
	Reason       string                `json:"reason"`
}

// ErrInvalidRequest is returned for malformed ingress input. It is the only
// failure that surfaces to the ingress caller.
var ErrInvalidRequest = errors.New("invalid transaction request")

// Validate checks the request invariants: a non-empty transaction sequence
// with non-empty to/value on every instruction.
func (r *TransactionRequest) Validate() error {
	if len(r.Transactions) == 0 {
		return fmt.Errorf("%w: empty transaction list", ErrInvalidRequest)
	}
	for i, tx := range r.Transactions {
		if tx.To == "" {
			return fmt.Errorf("%w: transaction %d missing destination", ErrInvalidRequest, i)
		}
		if tx.Value == "" {
			return fmt.Errorf("%w: transaction %d missing value", ErrInvalidRequest, i)
		}
	}
	return nil
}

// Warning is an advisory signal emitted by one rater for one correlation id.
// At most one is consumed per aggregation window.
type Warning struct {
	CorrelationID string    `json:"correlation_id"`
	Message       string    `json:"message"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// Decision is the terminal arbitration result. Never revised once produced.
type Decision struct {
	CorrelationID string `json:"correlation_id"`
	Status        Status `json:"status"`
	Rationale     string `json:"rationale"`
}

// SubmitResponse is the ingress envelope. Status "success" means the pipeline
// processed the request to a terminal decision, not that it was approved.
type SubmitResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlation_id"`
}
