package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewDefaultsQueue(t *testing.T) {
	w := New(nil, "", zerolog.Nop())
	if w.queue != DefaultQueue {
		t.Fatalf("expected default queue, got %q", w.queue)
	}

	named := New(nil, "emails", zerolog.Nop())
	if named.queue != "emails" {
		t.Fatalf("expected named queue, got %q", named.queue)
	}
}

func TestQueueKey(t *testing.T) {
	if got := queueKey("default"); got != "queue:default" {
		t.Fatalf("unexpected queue key: %q", got)
	}
}

func TestDispatchInvokesRegisteredHandler(t *testing.T) {
	w := New(nil, DefaultQueue, zerolog.Nop())

	var received Job
	w.Register("noop", func(ctx context.Context, job Job) error {
		received = job
		return nil
	})

	raw, _ := json.Marshal(Job{ID: "job-1", Type: "noop", Payload: json.RawMessage(`{"n":1}`)})
	w.dispatch(context.Background(), string(raw))

	if received.ID != "job-1" {
		t.Fatalf("handler not invoked with job, got %+v", received)
	}
	if string(received.Payload) != `{"n":1}` {
		t.Fatalf("payload not forwarded verbatim: %s", received.Payload)
	}
}

func TestDispatchDropsUnregisteredType(t *testing.T) {
	w := New(nil, DefaultQueue, zerolog.Nop())

	called := false
	w.Register("known", func(ctx context.Context, job Job) error {
		called = true
		return nil
	})

	w.dispatch(context.Background(), `{"id":"job-2","type":"unknown"}`)
	if called {
		t.Fatal("handler for a different type must not run")
	}
}

func TestDispatchDiscardsMalformedJob(t *testing.T) {
	w := New(nil, DefaultQueue, zerolog.Nop())
	w.Register("noop", func(ctx context.Context, job Job) error {
		t.Fatal("handler must not run for malformed jobs")
		return nil
	})

	w.dispatch(context.Background(), "not json at all")
}

func TestDispatchSurvivesHandlerError(t *testing.T) {
	w := New(nil, DefaultQueue, zerolog.Nop())
	w.Register("flaky", func(ctx context.Context, job Job) error {
		return errors.New("boom")
	})

	// 任务失败只记录日志，不应中断调度
	w.dispatch(context.Background(), `{"id":"job-3","type":"flaky"}`)
}
