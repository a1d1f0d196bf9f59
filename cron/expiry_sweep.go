package cron

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpirySweeper periodically expires lapsed pending bookings. It catches
// bookings whose expiry task was lost or never scheduled.
type ExpirySweeper struct {
	svc      BookingTasks
	interval time.Duration
	batch    int
	logger   *zap.Logger

	stop chan struct{}
	done chan struct{}
}

func NewExpirySweeper(svc BookingTasks, interval time.Duration, batch int, logger *zap.Logger) *ExpirySweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpirySweeper{
		svc:      svc,
		interval: interval,
		batch:    batch,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (j *ExpirySweeper) Start() {
	go j.run()
	j.logger.Info("Expiry sweep started", zap.Duration("interval", j.interval))
}

// Stop waits for an in-flight sweep to finish.
func (j *ExpirySweeper) Stop() {
	close(j.stop)
	<-j.done
	j.logger.Info("Expiry sweep stopped")
}

func (j *ExpirySweeper) run() {
	defer close(j.done)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stop:
			return
		}
	}
}

func (j *ExpirySweeper) sweep() int {
	ctx, cancel := context.WithTimeout(context.Background(), j.interval)
	defer cancel()

	n, err := j.svc.SweepExpired(ctx, j.batch)
	if err != nil {
		j.logger.Warn("Expiry sweep failed", zap.Int("expired", n), zap.Error(err))
		return n
	}
	if n > 0 {
		j.logger.Info("Expired lapsed bookings", zap.Int("count", n))
	}
	return n
}
