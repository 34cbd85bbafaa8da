package tasks

import (
	"context"
	"log"
	"time"

	"travel_app_echo/internal/models"
)

const (
	dueBatchSize = 100
	retryDelay   = 5 * time.Minute
)

// TaskStore is what the runner needs from Store
type TaskStore interface {
	DueTasks(ctx context.Context, now time.Time, limit int) ([]models.ScheduledTask, error)
	RecordRun(ctx context.Context, history *models.ScheduledTaskHistory) error
	UpdateTask(ctx context.Context, id uint, updates map[string]interface{}) error
}

// Runner executes due scheduled tasks through the registry
type Runner struct {
	store    TaskStore
	registry *Registry
	now      func() time.Time
}

func NewRunner(store TaskStore, registry *Registry) *Runner {
	return &Runner{store: store, registry: registry, now: time.Now}
}

// ProcessDue runs every task that is due and returns how many ran
func (r *Runner) ProcessDue(ctx context.Context) (int, error) {
	log.Println("Checking for pending tasks...")

	pendingTasks, err := r.store.DueTasks(ctx, r.now(), dueBatchSize)
	if err != nil {
		log.Printf("Error fetching pending tasks: %v", err)
		return 0, err
	}

	if len(pendingTasks) == 0 {
		log.Println("No pending tasks found.")
		return 0, nil
	}

	log.Printf("Found %d pending tasks.", len(pendingTasks))

	ran := 0
	for _, task := range pendingTasks {
		// Check context cancellation
		if ctx.Err() != nil {
			return ran, ctx.Err()
		}
		r.Execute(ctx, task)
		ran++
	}
	return ran, nil
}

// Execute runs a single task, records the run and moves the task to its next state.
// A failed run is retried after retryDelay until MaxAttempt runs have failed.
func (r *Runner) Execute(ctx context.Context, task models.ScheduledTask) {
	log.Printf("Processing task: %s (ID: %d)", task.TaskName, task.ID)

	attempt := task.Attempt + 1
	startTime := r.now()

	handler, found := r.registry.Get(task.TaskName)
	if !found {
		log.Printf("Task handler not found for: %s. Marking as failure.", task.TaskName)
		r.record(ctx, task, startTime, 0, models.TaskRunHandlerNotFound, attempt, map[string]interface{}{"error": "Handler not found"})
		r.update(ctx, task.ID, map[string]interface{}{
			"status":   models.ScheduledTaskStatusFailure,
			"last_run": &startTime,
		})
		return
	}

	result, err := handler(ctx, task)
	runtimeMs := int(r.now().Sub(startTime).Milliseconds())

	status := models.TaskRunSuccess
	if err != nil {
		status = models.TaskRunFailure
		result = map[string]interface{}{"error": err.Error()}
		log.Printf("Task %s failed (attempt %d/%d): %v", task.TaskName, attempt, task.MaxAttempt, err)
	} else {
		log.Printf("Task %s completed successfully.", task.TaskName)
	}

	r.record(ctx, task, startTime, runtimeMs, status, attempt, result)
	r.update(ctx, task.ID, nextState(task, err == nil, attempt, startTime))
}

func nextState(task models.ScheduledTask, succeeded bool, attempt int, ranAt time.Time) map[string]interface{} {
	updates := map[string]interface{}{"last_run": &ranAt}

	if !succeeded && attempt < task.MaxAttempt {
		updates["attempt"] = attempt
		updates["due"] = ranAt.Add(retryDelay)
		return updates
	}

	updates["attempt"] = 0
	if task.TaskType == models.ScheduledTaskTypeRecurring {
		// a recurring task keeps running on schedule even after exhausting its attempts
		nextDue := task.NextDue(ranAt)
		if nextDue.After(task.Due) {
			updates["status"] = models.ScheduledTaskStatusActive
			updates["due"] = nextDue
			return updates
		}
		updates["status"] = models.ScheduledTaskStatusDone
		return updates
	}

	if succeeded {
		updates["status"] = models.ScheduledTaskStatusDone
	} else {
		updates["status"] = models.ScheduledTaskStatusFailure
	}
	return updates
}

func (r *Runner) record(ctx context.Context, task models.ScheduledTask, runAt time.Time, runtimeMs int, status string, attempt int, result map[string]interface{}) {
	history := models.ScheduledTaskHistory{
		ScheduledTaskID: task.ID,
		TaskName:        task.TaskName,
		RunAt:           runAt,
		Runtime:         runtimeMs,
		Status:          status,
		AttemptNumber:   attempt,
		Arguments:       task.Arguments,
		Result:          result,
	}
	if err := r.store.RecordRun(ctx, &history); err != nil {
		log.Printf("Failed to record run of task %d: %v", task.ID, err)
	}
}

func (r *Runner) update(ctx context.Context, id uint, updates map[string]interface{}) {
	if err := r.store.UpdateTask(ctx, id, updates); err != nil {
		log.Printf("Failed to update task %d: %v", id, err)
	}
}

// Run calls ProcessDue once immediately and then on every tick until ctx is done
func (r *Runner) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	r.ProcessDue(ctx)
	for {
		select {
		case <-ticker.C:
			r.ProcessDue(ctx)
		case <-ctx.Done():
			return
		}
	}
}
