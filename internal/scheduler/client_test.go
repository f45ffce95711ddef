package scheduler

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

func TestTriggerSweepEnqueuesTask(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(srv.Addr(), "")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	if err := client.TriggerSweep(context.Background(), WindowToday); err != nil {
		t.Fatalf("trigger sweep: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: srv.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListPendingTasks("default")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(tasks))
	}
	if tasks[0].Type != TaskFollowUpSweep {
		t.Errorf("task type = %q, want %q", tasks[0].Type, TaskFollowUpSweep)
	}

	payload, err := ParseFollowUpSweepPayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.Window != WindowToday {
		t.Errorf("window = %q, want today", payload.Window)
	}
}

func TestTriggerSweepRejectsInvalidWindow(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(srv.Addr(), "")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	if err := client.TriggerSweep(context.Background(), "someday"); err == nil {
		t.Fatal("expected error for invalid window")
	}
}
