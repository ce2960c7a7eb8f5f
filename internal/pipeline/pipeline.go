// Package pipeline orchestrates the admission path for one transaction:
// correlate, broadcast to raters, wait out the aggregation window, arbitrate,
// and gate dispatch to the chain broadcaster on the decision. Each submission
// runs as its own task; pipelines for different correlation ids share nothing
// but the hub.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/txwarden/txwarden/internal/alert"
	"github.com/txwarden/txwarden/internal/arbiter"
	"github.com/txwarden/txwarden/internal/audit"
	"github.com/txwarden/txwarden/internal/correlate"
	"github.com/txwarden/txwarden/internal/dispatch"
	"github.com/txwarden/txwarden/internal/hub"
	"github.com/txwarden/txwarden/internal/metrics"
	"github.com/txwarden/txwarden/internal/model"
)

// Options wires the pipeline's collaborators. Hub and Engine are required;
// Broadcaster, Dispatcher, and AuditLog may be nil and are then skipped.
type Options struct {
	Hub          *hub.Hub
	Engine       *arbiter.Engine
	Broadcaster  *dispatch.Broadcaster
	Dispatcher   *alert.Dispatcher
	AuditLog     *audit.Log
	ConfigHash   string
	WindowBudget time.Duration
	QuietPeriod  time.Duration
}

// Pipeline processes admission requests to terminal decisions.
type Pipeline struct {
	opts Options
}

// New creates a pipeline from the given options.
func New(opts Options) (*Pipeline, error) {
	if opts.Hub == nil || opts.Engine == nil {
		return nil, fmt.Errorf("pipeline requires a hub and an arbitration engine")
	}
	if opts.WindowBudget <= 0 {
		opts.WindowBudget = 5 * time.Second
	}
	return &Pipeline{opts: opts}, nil
}

// Admit runs one transaction through the full admission path and returns the
// ingress envelope. Status "success" means a terminal decision was produced;
// the decision itself may be REJECTED. Only a malformed request or caller
// cancellation surfaces as an error.
func (p *Pipeline) Admit(ctx context.Context, req model.TransactionRequest) (model.SubmitResponse, error) {
	id, err := correlate.Correlate(req)
	if err != nil {
		return model.SubmitResponse{}, err
	}
	metrics.TransactionsAdmitted.Inc()

	// Fail-open on delivery: raters that cannot be reached simply miss this
	// transaction, the admission path continues.
	if err := p.opts.Hub.Broadcast(hub.TransactionMessage{
		Type: hub.TypeTransaction,
		Data: hub.TransactionPayload{
			Transactions: req.Transactions,
			Hash:         id,
		},
	}); err != nil {
		log.Printf("pipeline: broadcast %s: %v", id, err)
	}

	warning, err := p.opts.Hub.Await(ctx, id, p.opts.WindowBudget)
	if err != nil {
		// Caller abandoned the pipeline; the window is already unregistered.
		return model.SubmitResponse{}, err
	}

	if warning != nil {
		p.alertWarning(id, req, warning)
	} else if p.opts.QuietPeriod > 0 {
		// Unwarned transactions hold for a quiet period before dispatch.
		select {
		case <-time.After(p.opts.QuietPeriod):
		case <-ctx.Done():
			return model.SubmitResponse{}, ctx.Err()
		}
	}

	decision := p.opts.Engine.Arbitrate(ctx, id, req, warning)
	metrics.DecisionsTotal.WithLabelValues(string(decision.Status)).Inc()
	p.recordAudit(req, decision, warning)
	p.alertDecision(req, decision, warning)

	// Gating contract: REJECTED blocks funds movement in all paths. Only
	// approved transactions reach the chain broadcaster.
	if decision.Status == model.Approved && p.opts.Broadcaster != nil {
		if err := p.opts.Broadcaster.Send(req, warning); err != nil {
			metrics.DispatchFailures.Inc()
			log.Printf("pipeline: dispatch %s: %v", id, err)
		}
	}

	return model.SubmitResponse{
		Status:        "success",
		Message:       fmt.Sprintf("transaction %s: %s", decision.Status, decision.Rationale),
		CorrelationID: id,
	}, nil
}

func (p *Pipeline) recordAudit(req model.TransactionRequest, d model.Decision, w *model.Warning) {
	if p.opts.AuditLog == nil {
		return
	}
	entry := audit.AuditEntry{
		CorrelationID: d.CorrelationID,
		SafeAddress:   req.SafeAddress,
		Transfers:     len(req.Transactions),
		Decision:      string(d.Status),
		Rationale:     d.Rationale,
		ConfigHash:    p.opts.ConfigHash,
	}
	if w != nil {
		entry.Warning = w.Message
	}
	if err := p.opts.AuditLog.Record(entry); err != nil {
		log.Printf("pipeline: audit %s: %v", d.CorrelationID, err)
	}
}

func (p *Pipeline) alertWarning(id string, req model.TransactionRequest, w *model.Warning) {
	if p.opts.Dispatcher == nil {
		return
	}
	p.opts.Dispatcher.Dispatch(alert.AlertEvent{
		Timestamp:     time.Now().UTC().Format(audit.TimestampFormat),
		CorrelationID: id,
		SafeAddress:   req.SafeAddress,
		Warning:       w.Message,
		ConfigHash:    p.opts.ConfigHash,
		Type:          "warning_received",
	})
}

func (p *Pipeline) alertDecision(req model.TransactionRequest, d model.Decision, w *model.Warning) {
	if p.opts.Dispatcher == nil {
		return
	}
	event := alert.AlertEvent{
		Timestamp:     time.Now().UTC().Format(audit.TimestampFormat),
		CorrelationID: d.CorrelationID,
		SafeAddress:   req.SafeAddress,
		Decision:      string(d.Status),
		Rationale:     d.Rationale,
		ConfigHash:    p.opts.ConfigHash,
	}
	if w != nil {
		event.Warning = w.Message
	}
	p.opts.Dispatcher.Dispatch(event)
}
