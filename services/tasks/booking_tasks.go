package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"

	"github.com/hibiken/asynq"
)

const (
	TypeBookingExpire = "booking:expire"
	TypeBookingBuzzer = "booking:buzzer"
)

// NewExpireTask fires at the end of the booking's response window.
func NewExpireTask(bookingID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(models.BookingTaskPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingExpire, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID("expire:" + bookingID),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// NewBuzzerTask is processed right away. Buzzers are best effort, so a
// failed one is not retried.
func NewBuzzerTask(bookingID string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(models.BookingTaskPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingBuzzer, b)
	opts := []asynq.Option{
		asynq.MaxRetry(0),
		asynq.Timeout(20 * time.Second),
	}
	return task, opts, nil
}

// ParsePayload decodes the payload of either booking task.
func ParsePayload(task *asynq.Task) (models.BookingTaskPayload, error) {
	var p models.BookingTaskPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid %s payload: %w", task.Type(), err)
	}
	if p.BookingID == "" {
		return p, fmt.Errorf("invalid %s payload: missing bookingId", task.Type())
	}
	return p, nil
}

// Enqueuer is the part of asynq.Client the scheduler needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqScheduler queues booking tasks on Redis.
type AsynqScheduler struct {
	client Enqueuer
}

func NewAsynqScheduler(client Enqueuer) *AsynqScheduler {
	return &AsynqScheduler{client: client}
}

func (s *AsynqScheduler) ScheduleExpiry(ctx context.Context, bookingID string, at time.Time) error {
	task, opts, err := NewExpireTask(bookingID, at)
	if err != nil {
		return err
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to schedule expiry for %s: %w", bookingID, err)
	}
	return nil
}

func (s *AsynqScheduler) EnqueueBuzzer(ctx context.Context, bookingID string) error {
	task, opts, err := NewBuzzerTask(bookingID)
	if err != nil {
		return err
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue buzzer for %s: %w", bookingID, err)
	}
	return nil
}
