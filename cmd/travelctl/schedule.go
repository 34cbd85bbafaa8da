package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"travel_app_echo/internal/models"
	"travel_app_echo/internal/tasks"
)

func scheduleCmd() *cobra.Command {
	var (
		taskName   string
		argsStr    string
		dueStr     string
		taskType   string
		recurring  string
		maxAttempt int
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule a task for the worker",
		Example: `  travelctl schedule --task_name log_info --arguments '{"message":"hello"}' --due "2026-01-02 15:04"
  travelctl schedule --task_name reverify_pending_payments --arguments '{"limit":100}' --due now \
    --tasktype recurring --recurring "FREQ=HOURLY"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Parse arguments JSON
			var args map[string]interface{}
			if err := json.Unmarshal([]byte(argsStr), &args); err != nil {
				return fmt.Errorf("invalid JSON arguments: %w", err)
			}

			due, err := parseDue(dueStr, time.Now())
			if err != nil {
				return err
			}

			kind := models.ScheduledTaskType(taskType)
			if kind != models.ScheduledTaskTypeOneTime && kind != models.ScheduledTaskTypeRecurring {
				return fmt.Errorf("invalid tasktype %q, use onetime or recurring", taskType)
			}
			var recurringPtr *string
			if recurring != "" {
				recurringPtr = &recurring
			} else if kind == models.ScheduledTaskTypeRecurring {
				return fmt.Errorf("--recurring is required for recurring tasks")
			}

			task, err := tasks.BuildScheduledTask(taskName, args, due, recurringPtr, kind, maxAttempt)
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			if err := tasks.NewStore(db).Schedule(context.Background(), task); err != nil {
				return err
			}

			fmt.Printf("Successfully created task ID: %d\n", task.ID)
			fmt.Printf("Task: %s\nDue: %s\nType: %s\n", task.TaskName, task.Due, task.TaskType)
			return nil
		},
	}

	cmd.Flags().StringVar(&taskName, "task_name", "", "name of the task (mandatory)")
	cmd.Flags().StringVar(&argsStr, "arguments", "", "JSON arguments for the task (mandatory)")
	cmd.Flags().StringVar(&dueStr, "due", "", `due date, "now", RFC3339 or 2006-01-02 15:04 in local time (mandatory)`)
	cmd.Flags().StringVar(&taskType, "tasktype", string(models.ScheduledTaskTypeOneTime), "task type: onetime or recurring")
	cmd.Flags().StringVar(&recurring, "recurring", "", "RRULE recurrence, e.g. FREQ=DAILY;BYHOUR=3")
	cmd.Flags().IntVar(&maxAttempt, "max_attempt", 3, "max attempts")
	cmd.MarkFlagRequired("task_name")
	cmd.MarkFlagRequired("arguments")
	cmd.MarkFlagRequired("due")

	return cmd
}

func parseDue(s string, now time.Time) (time.Time, error) {
	if s == "now" {
		return now, nil
	}
	if due, err := time.Parse(time.RFC3339, s); err == nil {
		return due, nil
	}
	due, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date format, use '2006-01-02 15:04' (local) or RFC3339: %w", err)
	}
	return due, nil
}
