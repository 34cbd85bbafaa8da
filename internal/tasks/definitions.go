package tasks

import (
	"time"

	"travel_app_echo/internal/notifications"
)

// Deps are the collaborators the built-in tasks need. Nil members leave their task unregistered.
type Deps struct {
	Payments      Reverifier
	Deliver       notifications.DeliverFunc
	Scheduler     Scheduler
	ReverifyAfter time.Duration
}

// DefineTasks registers all available tasks
func DefineTasks(r *Registry, deps Deps) {
	// Register general tasks
	r.Register(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)

	if deps.Payments != nil {
		t := NewReverifyPendingTask(deps.Payments, deps.ReverifyAfter)
		r.Register(t.TaskID(), t.HandleExecution)
	}

	if deps.Deliver != nil && deps.Scheduler != nil {
		t := NewSendNotificationTask(deps.Deliver, deps.Scheduler)
		r.Register(t.TaskID(), t.HandleExecution)
	}
}

// ReverifyRule is the default recurrence of reverify_pending_payments
const ReverifyRule = "FREQ=MINUTELY;INTERVAL=15"
