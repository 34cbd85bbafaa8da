package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ListQueue is the subset of the Redis client used as a job queue
type ListQueue interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// QueueDispatcher pushes notifications onto a Redis list consumed by the worker
type QueueDispatcher struct {
	client ListQueue
	queue  string
}

func NewQueueDispatcher(client ListQueue, queue string) *QueueDispatcher {
	return &QueueDispatcher{client: client, queue: queue}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, n Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		log.Printf("[NOTIFY] failed to encode notification %s: %v", n.ID, err)
		return
	}

	// The request may finish before Redis answers
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := d.client.RPush(pushCtx, d.queue, data).Err(); err != nil {
		log.Printf("[NOTIFY] failed to enqueue notification %s (%s) for %s: %v", n.ID, n.Kind, n.To, err)
		return
	}
	log.Printf("[NOTIFY] queued %s notification %s for %s", n.Kind, n.ID, n.To)
}

// Consumer pops notifications from the Redis list and delivers them one by one
type Consumer struct {
	client    ListQueue
	queue     string
	deliver   DeliverFunc
	onFailure FailureFunc
	wait      time.Duration
}

func NewConsumer(client ListQueue, queue string, deliver DeliverFunc, onFailure FailureFunc) *Consumer {
	return &Consumer{client: client, queue: queue, deliver: deliver, onFailure: onFailure, wait: 5 * time.Second}
}

// Run blocks until ctx is cancelled
func (c *Consumer) Run(ctx context.Context) {
	log.Printf("[NOTIFY] consuming queue %s", c.queue)
	for ctx.Err() == nil {
		if err := c.ProcessOne(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[NOTIFY] queue read failed: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// ProcessOne waits for a single job and handles it. An empty queue is not an error.
func (c *Consumer) ProcessOne(ctx context.Context) error {
	res, err := c.client.BLPop(ctx, c.wait, c.queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	if len(res) != 2 {
		return nil
	}

	var n Notification
	if err := json.Unmarshal([]byte(res[1]), &n); err != nil {
		log.Printf("[NOTIFY] dropping malformed job: %v", err)
		return nil
	}

	handle(ctx, n, c.deliver, c.onFailure)
	return nil
}

func handle(ctx context.Context, n Notification, deliver DeliverFunc, onFailure FailureFunc) {
	if err := deliver(ctx, n); err != nil {
		log.Printf("[NOTIFY] delivery of %s to %s failed (attempt %d): %v", n.ID, n.To, n.Attempt, err)
		if onFailure != nil {
			onFailure(ctx, n, err)
		}
		return
	}
	log.Printf("[NOTIFY] delivered %s notification %s to %s", n.Kind, n.ID, n.To)
}
