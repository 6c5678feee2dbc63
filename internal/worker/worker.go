package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultQueue 是当前系统使用的唯一任务队列。
const DefaultQueue = "default"

const popTimeout = 5 * time.Second

// Job 是队列中任务的 JSON 信封。系统目前没有任何生产者，
// 任务类型集合为空。
type Job struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler processes a single job of a registered type.
type Handler func(ctx context.Context, job Job) error

// Worker drains a named queue until its context is cancelled.
type Worker struct {
	client   *redis.Client
	queue    string
	log      zerolog.Logger
	handlers map[string]Handler
}

// New creates a worker bound to the given queue.
func New(client *redis.Client, queue string, log zerolog.Logger) *Worker {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Worker{
		client:   client,
		queue:    queue,
		log:      log,
		handlers: make(map[string]Handler),
	}
}

// Register binds a handler to a job type. No producers exist today, so
// nothing calls this in the shipped binaries.
func (w *Worker) Register(jobType string, h Handler) {
	w.handlers[jobType] = h
}

func queueKey(queue string) string {
	return "queue:" + queue
}

// Run blocks, popping jobs from the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Str("queue", w.queue).Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Str("queue", w.queue).Msg("worker stopping")
			return ctx.Err()
		default:
		}

		res, err := w.client.BLPop(ctx, popTimeout, queueKey(w.queue)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			w.log.Error().Err(err).Msg("failed to pop job")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		// BLPop returns [key, value].
		if len(res) < 2 {
			continue
		}
		w.dispatch(ctx, res[1])
	}
}

func (w *Worker) dispatch(ctx context.Context, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		w.log.Error().Err(err).Msg("discarding malformed job")
		return
	}

	handler, ok := w.handlers[job.Type]
	if !ok {
		w.log.Warn().Str("id", job.ID).Str("type", job.Type).Msg("no handler registered, dropping job")
		return
	}

	if err := handler(ctx, job); err != nil {
		w.log.Error().Err(err).Str("id", job.ID).Str("type", job.Type).Msg("job failed")
		return
	}
	w.log.Info().Str("id", job.ID).Str("type", job.Type).Msg("job done")
}
