package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (r *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func TestSchedulerEnqueuesBookingTasks(t *testing.T) {
	rec := &recordingEnqueuer{}
	s := NewAsynqScheduler(rec)
	ctx := context.Background()

	if err := s.ScheduleExpiry(ctx, "b1", time.Now().Add(3*time.Minute)); err != nil {
		t.Fatalf("ScheduleExpiry: %v", err)
	}
	if err := s.EnqueueBuzzer(ctx, "b1"); err != nil {
		t.Fatalf("EnqueueBuzzer: %v", err)
	}
	if len(rec.tasks) != 2 {
		t.Fatalf("enqueued %d tasks, want 2", len(rec.tasks))
	}

	wantTypes := []string{TypeBookingExpire, TypeBookingBuzzer}
	for i, task := range rec.tasks {
		if task.Type() != wantTypes[i] {
			t.Errorf("task %d type = %s, want %s", i, task.Type(), wantTypes[i])
		}
		p, err := ParsePayload(task)
		if err != nil {
			t.Fatalf("ParsePayload: %v", err)
		}
		if p.BookingID != "b1" {
			t.Errorf("payload booking = %s, want b1", p.BookingID)
		}
	}
}

func TestSchedulerWrapsEnqueueErrors(t *testing.T) {
	boom := errors.New("redis down")
	s := NewAsynqScheduler(&recordingEnqueuer{err: boom})
	if err := s.EnqueueBuzzer(context.Background(), "b1"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func TestParsePayloadRejectsBadInput(t *testing.T) {
	for name, payload := range map[string]string{
		"not json":   "{",
		"no booking": `{"providerId":"p1"}`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ParsePayload(asynq.NewTask(TypeBookingExpire, []byte(payload))); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
