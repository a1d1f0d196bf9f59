package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/config"
	"github.com/Hiteshmehtaa/yann-app-sub003/models"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingTasks is the booking service surface the worker drives.
type BookingTasks interface {
	ExpireBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	DeliverBuzzer(ctx context.Context, bookingID string) error
	SweepExpired(ctx context.Context, limit int) (int, error)
}

// TaskRedisOpt is the asynq connection for the booking task queue.
func TaskRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}
}

// NewMux routes booking tasks to the service.
func NewMux(svc BookingTasks, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingExpire, handleExpireTask(svc, logger))
	mux.HandleFunc(tasks.TypeBookingBuzzer, handleBuzzerTask(svc, logger))
	return mux
}

// Worker runs the asynq server for booking tasks.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

func NewWorker(redisOpt asynq.RedisClientOpt, svc BookingTasks, logger *zap.Logger) *Worker {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)
	return &Worker{srv: srv, mux: NewMux(svc, logger), logger: logger}
}

// Start runs the server in the background, retrying the startup with a
// growing delay.
func (w *Worker) Start() {
	go func() {
		const maxAttempts = 5
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			err := w.srv.Start(w.mux)
			if err == nil {
				w.logger.Info("Booking task worker started")
				return
			}
			w.logger.Warn("Failed to start booking task worker",
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err),
			)
			time.Sleep(time.Duration(attempt*2) * time.Second)
		}
		w.logger.Error("Booking task worker gave up; relying on the expiry sweep")
	}()
}

func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}

func handleExpireTask(svc BookingTasks, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParsePayload(task)
		if err != nil {
			logger.Warn("Dropping booking task", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		b, err := svc.ExpireBooking(ctx, p.BookingID)
		if err != nil {
			logger.Warn("Expiry task failed", zap.String("bookingId", p.BookingID), zap.Error(err))
			return err
		}
		logger.Debug("Expiry task done",
			zap.String("bookingId", p.BookingID),
			zap.String("status", string(b.Status)),
		)
		return nil
	}
}

func handleBuzzerTask(svc BookingTasks, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParsePayload(task)
		if err != nil {
			logger.Warn("Dropping booking task", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err := svc.DeliverBuzzer(ctx, p.BookingID); err != nil {
			logger.Debug("Buzzer task failed", zap.String("bookingId", p.BookingID), zap.Error(err))
			return err
		}
		return nil
	}
}
