package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"travel_app_echo/internal/models"
	"travel_app_echo/internal/notifications"
)

const (
	DefaultNotificationAttempts = 3
	notificationRetryDelay      = 5 * time.Minute
)

// Scheduler stores new scheduled tasks
type Scheduler interface {
	Schedule(ctx context.Context, task *models.ScheduledTask) error
}

// SendNotificationArgs defines the arguments for a notification task
type SendNotificationArgs struct {
	Notification notifications.Notification `json:"notification"`
	MaxAttempt   int                        `json:"max_attempt"`
}

// SendNotificationTaskDef redelivers a notification over the channels that failed last time
type SendNotificationTaskDef struct {
	deliver   notifications.DeliverFunc
	scheduler Scheduler
}

func NewSendNotificationTask(deliver notifications.DeliverFunc, scheduler Scheduler) *SendNotificationTaskDef {
	return &SendNotificationTaskDef{deliver: deliver, scheduler: scheduler}
}

// TaskID returns the unique identifier for this task
func (t *SendNotificationTaskDef) TaskID() string {
	return "send_notification"
}

// CreateTask builds a one-time task due at due. Retries are new tasks, so the runner itself never repeats it.
func (t *SendNotificationTaskDef) CreateTask(args SendNotificationArgs, due time.Time) (*models.ScheduledTask, error) {
	return BuildScheduledTask(t.TaskID(), args, due, nil, models.ScheduledTaskTypeOneTime, 1)
}

// HandleExecution delivers the notification and reschedules the failed channels
func (t *SendNotificationTaskDef) HandleExecution(ctx context.Context, task models.ScheduledTask) (map[string]interface{}, error) {
	var args SendNotificationArgs
	if err := decodeArgs(task, &args); err != nil {
		return nil, err
	}
	n := args.Notification
	if len(n.Channels) == 0 {
		return map[string]interface{}{"status": "skipped", "message": "no channels left"}, nil
	}

	err := t.deliver(ctx, n)
	if err == nil {
		return map[string]interface{}{
			"status":   "success",
			"id":       n.ID,
			"channels": n.Channels,
			"attempt":  n.Attempt,
		}, nil
	}

	rescheduled, schedErr := t.Retry(ctx, n, err, args.MaxAttempt)
	if schedErr != nil {
		return nil, fmt.Errorf("delivery failed (%v) and retry could not be scheduled: %w", err, schedErr)
	}
	if !rescheduled {
		return nil, fmt.Errorf("max attempts reached for notification %s: %w", n.ID, err)
	}
	return map[string]interface{}{
		"status":       "rescheduled",
		"id":           n.ID,
		"error":        err.Error(),
		"next_attempt": n.Attempt + 1,
	}, nil
}

// Retry schedules another delivery of n over the channels that failed.
// It reports false when n already used maxAttempt attempts.
func (t *SendNotificationTaskDef) Retry(ctx context.Context, n notifications.Notification, deliveryErr error, maxAttempt int) (bool, error) {
	if maxAttempt <= 0 {
		maxAttempt = DefaultNotificationAttempts
	}
	if n.Attempt >= maxAttempt {
		log.Printf("[Task: send_notification] Max attempts (%d) reached for %s", maxAttempt, n.ID)
		return false, nil
	}

	var derr *notifications.DeliveryError
	if errors.As(deliveryErr, &derr) && len(derr.Failed) > 0 {
		n.Channels = derr.Failed
	}
	n.Attempt++

	task, err := t.CreateTask(SendNotificationArgs{Notification: n, MaxAttempt: maxAttempt}, time.Now().Add(notificationRetryDelay))
	if err != nil {
		return false, err
	}
	if err := t.scheduler.Schedule(ctx, task); err != nil {
		return false, err
	}
	log.Printf("[Task: send_notification] Rescheduled %s over %v for attempt %d", n.ID, n.Channels, n.Attempt)
	return true, nil
}

// OnFailure adapts Retry to notifications.FailureFunc for the queue consumer and channel dispatcher
func (t *SendNotificationTaskDef) OnFailure(maxAttempt int) notifications.FailureFunc {
	return func(ctx context.Context, n notifications.Notification, err error) {
		if _, schedErr := t.Retry(ctx, n, err, maxAttempt); schedErr != nil {
			log.Printf("[Task: send_notification] Failed to schedule retry for %s: %v", n.ID, schedErr)
		}
	}
}
