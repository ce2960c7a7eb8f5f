package hub

import (
	"context"
	"time"

	"github.com/txwarden/txwarden/internal/metrics"
	"github.com/txwarden/txwarden/internal/model"
)

// Await opens the aggregation window for a correlation id and blocks until it
// resolves: with the first warning routed to the id, or empty once the budget
// elapses. Resolution happens exactly once; a warning arriving after the
// timeout finds no window and is dropped by SubmitWarning.
//
// Cancelling ctx abandons the window and unregisters it so dead waiters do
// not accumulate as rater traffic continues.
func (h *Hub) Await(ctx context.Context, correlationID string, budget time.Duration) (*model.Warning, error) {
	ch := h.openWindow(correlationID)
	opened := time.Now()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case w := <-ch:
		metrics.WindowResolution.Observe(time.Since(opened).Seconds())
		return &w, nil

	case <-timer.C:
		h.closeWindow(correlationID, ch)
		// A warning may have been routed between the timer firing and the
		// window being closed. It arrived within budget, so it wins.
		select {
		case w := <-ch:
			metrics.WindowResolution.Observe(time.Since(opened).Seconds())
			return &w, nil
		default:
		}
		metrics.WindowResolution.Observe(time.Since(opened).Seconds())
		return nil, nil

	case <-ctx.Done():
		h.closeWindow(correlationID, ch)
		return nil, ctx.Err()
	}
}
