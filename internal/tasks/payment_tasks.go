package tasks

import (
	"context"
	"time"

	"travel_app_echo/internal/models"
	"travel_app_echo/internal/services"
)

// Reverifier re-checks stale pending payments with the gateway
type Reverifier interface {
	ReverifyPending(ctx context.Context, olderThan time.Duration, limit int) (services.ReverifySummary, error)
}

type ReverifyPendingArgs struct {
	OlderThanMinutes int `json:"older_than_minutes"`
	Limit            int `json:"limit"`
}

// ReverifyPendingTaskDef recovers payments whose verify never arrived or failed at the gateway
type ReverifyPendingTaskDef struct {
	payments  Reverifier
	olderThan time.Duration
}

func NewReverifyPendingTask(payments Reverifier, olderThan time.Duration) *ReverifyPendingTaskDef {
	return &ReverifyPendingTaskDef{payments: payments, olderThan: olderThan}
}

func (t *ReverifyPendingTaskDef) TaskID() string {
	return "reverify_pending_payments"
}

func (t *ReverifyPendingTaskDef) HandleExecution(ctx context.Context, task models.ScheduledTask) (map[string]interface{}, error) {
	var args ReverifyPendingArgs
	if err := decodeArgs(task, &args); err != nil {
		return nil, err
	}

	olderThan := t.olderThan
	if args.OlderThanMinutes > 0 {
		olderThan = time.Duration(args.OlderThanMinutes) * time.Minute
	}

	summary, err := t.payments.ReverifyPending(ctx, olderThan, args.Limit)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"status":    "success",
		"checked":   summary.Checked,
		"completed": summary.Completed,
		"failed":    summary.Failed,
		"pending":   summary.Pending,
		"errors":    summary.Errors,
	}, nil
}
