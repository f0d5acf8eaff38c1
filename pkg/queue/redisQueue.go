package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 5 * time.Second
	defaultPopTimeout = 1 * time.Second
)

// RedisQueueConfig contains configuration for RedisQueue.
type RedisQueueConfig struct {
	MainQueue    string
	DelayedQueue string
	DLQ          string
	MaxRetries   int
	BaseDelay    time.Duration
	PollInterval time.Duration
}

// RedisQueue implements Queue on top of a Redis list (ready tasks), a sorted
// set (tasks waiting out a retry backoff) and a DLQ sorted set.
type RedisQueue struct {
	client       *redis.Client
	mainQueue    string
	delayedQueue string
	dlq          string
	maxRetries   int
	baseDelay    time.Duration
	maxDelay     time.Duration
	popTimeout   time.Duration
}

// NewRedisQueue builds a queue over an externally constructed client; the
// queue never opens its own connections.
func NewRedisQueue(client *redis.Client, cfg *RedisQueueConfig) (*RedisQueue, error) {
	if cfg == nil || cfg.MainQueue == "" || cfg.DelayedQueue == "" || cfg.DLQ == "" {
		return nil, fmt.Errorf("queue names must be configured")
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	popTimeout := cfg.PollInterval
	if popTimeout <= 0 {
		popTimeout = defaultPopTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisQueue{
		client:       client,
		mainQueue:    cfg.MainQueue,
		delayedQueue: cfg.DelayedQueue,
		dlq:          cfg.DLQ,
		maxRetries:   maxRetries,
		baseDelay:    baseDelay,
		maxDelay:     baseDelay * 16,
		popTimeout:   popTimeout,
	}, nil
}

// Publish sends a task to the queue. Tasks with a future ExecuteAt land in
// the delayed set and are promoted when due.
func (r *RedisQueue) Publish(ctx context.Context, task *Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if task.Type == "" {
		return fmt.Errorf("task type cannot be empty")
	}
	if task.MaxRetries <= 0 {
		task.MaxRetries = r.maxRetries
	}

	taskData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if !task.ExecuteAt.IsZero() && task.ExecuteAt.After(time.Now()) {
		score := float64(task.ExecuteAt.UnixNano()) / 1e9
		if err := r.client.ZAdd(ctx, r.delayedQueue, &redis.Z{
			Score:  score,
			Member: taskData,
		}).Err(); err != nil {
			return fmt.Errorf("failed to publish delayed task: %w", err)
		}
		logrus.Debugf("Task %s scheduled for %s", task.ID, task.ExecuteAt.Format(time.RFC3339))
		return nil
	}

	if err := r.client.LPush(ctx, r.mainQueue, taskData).Err(); err != nil {
		return fmt.Errorf("failed to publish task: %w", err)
	}
	logrus.Debugf("Task %s published to %s", task.ID, r.mainQueue)
	return nil
}

// Subscribe consumes tasks until ctx is cancelled. Handler failures are
// retried with exponential backoff; exhausted tasks go to the DLQ.
func (r *RedisQueue) Subscribe(ctx context.Context, handler func(*Task) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := r.promoteDueTasks(ctx); err != nil && ctx.Err() == nil {
			logrus.Errorf("Failed to promote delayed tasks: %v", err)
		}

		result, err := r.client.BRPop(ctx, r.popTimeout, r.mainQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logrus.Errorf("Failed to pop task: %v", err)
			time.Sleep(r.popTimeout)
			continue
		}

		// BRPop returns [queue, payload]
		var task Task
		if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
			logrus.Errorf("Dropping unreadable task payload: %v", err)
			continue
		}

		task.Attempts++
		if err := handler(&task); err != nil {
			r.handleFailure(ctx, &task, err)
		}
	}
}

// promoteDueTasks moves delayed tasks whose time has come onto the main list.
func (r *RedisQueue) promoteDueTasks(ctx context.Context) error {
	now := strconv.FormatFloat(float64(time.Now().UnixNano())/1e9, 'f', -1, 64)

	due, err := r.client.ZRangeByScore(ctx, r.delayedQueue, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil || len(due) == 0 {
		return err
	}

	pipe := r.client.TxPipeline()
	for _, member := range due {
		pipe.LPush(ctx, r.mainQueue, member)
		pipe.ZRem(ctx, r.delayedQueue, member)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisQueue) handleFailure(ctx context.Context, task *Task, taskErr error) {
	if task.Attempts < task.MaxRetries {
		task.ExecuteAt = time.Now().Add(r.backoff(task.Attempts))
		if err := r.Publish(ctx, task); err != nil {
			logrus.Errorf("Failed to requeue task %s: %v", task.ID, err)
		} else {
			logrus.Warnf("Task %s failed (attempt %d/%d), retrying: %v",
				task.ID, task.Attempts, task.MaxRetries, taskErr)
		}
		return
	}

	failed := &FailedTask{
		Task:     task,
		Error:    taskErr.Error(),
		FailedAt: time.Now(),
		Attempts: task.Attempts,
	}
	data, err := json.Marshal(failed)
	if err != nil {
		logrus.Errorf("Failed to marshal failed task %s: %v", task.ID, err)
		return
	}

	score := float64(failed.FailedAt.UnixNano()) / 1e9
	if err := r.client.ZAdd(ctx, r.dlq, &redis.Z{Score: score, Member: data}).Err(); err != nil {
		logrus.Errorf("Failed to move task %s to DLQ: %v", task.ID, err)
		return
	}
	logrus.Errorf("Task %s moved to DLQ after %d attempts: %v", task.ID, task.Attempts, taskErr)
}

// backoff calculates exponential delay with jitter, capped at maxDelay.
func (r *RedisQueue) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		return r.baseDelay
	}

	delay := r.baseDelay * time.Duration(1<<(attempt-1))
	if delay > r.maxDelay {
		delay = r.maxDelay
	}

	// ±25% jitter
	jitter := time.Duration(rand.Int63n(int64(delay/2) + 1))
	if rand.Intn(2) == 0 {
		delay += jitter / 2
	} else {
		delay -= jitter / 2
	}
	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	return delay
}
