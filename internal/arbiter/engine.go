// Package arbiter turns a transaction plus at most one rater warning into a
// terminal APPROVE/REJECT decision. The unwarned path is cheap and never
// consults the judge; the warned path is fail-closed: any judge failure maps
// to REJECTED, never to a silent approval.
package arbiter

import (
	"context"
	"fmt"

	"github.com/txwarden/txwarden/internal/model"
)

// NoAdvisoryRationale is the rationale recorded for unwarned approvals.
const NoAdvisoryRationale = "no advisory raised"

// Engine arbitrates decisions using the configured judge capability.
type Engine struct {
	judge Judge
}

// NewEngine creates an arbitration engine around a judge.
func NewEngine(judge Judge) *Engine {
	return &Engine{judge: judge}
}

// Arbitrate produces the terminal decision for one correlation id. The
// decision is never revised; callers forward it verbatim to the broadcaster
// gate and the audit sink.
func (e *Engine) Arbitrate(ctx context.Context, correlationID string, req model.TransactionRequest, warning *model.Warning) model.Decision {
	if warning == nil {
		return model.Decision{
			CorrelationID: correlationID,
			Status:        model.Approved,
			Rationale:     NoAdvisoryRationale,
		}
	}

	verdict, err := e.judge.Judge(ctx, Context{
		Status:         "warning",
		Reason:         req.Reason,
		WarningMessage: warning.Message,
		Transactions:   req.Transactions,
	})
	if err != nil {
		return model.Decision{
			CorrelationID: correlationID,
			Status:        model.Rejected,
			Rationale:     fmt.Sprintf("judge failure: %v", err),
		}
	}

	status := model.Rejected
	if verdict.Approved {
		status = model.Approved
	}
	return model.Decision{
		CorrelationID: correlationID,
		Status:        status,
		Rationale:     verdict.Rationale,
	}
}
