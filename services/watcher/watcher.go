// Package watcher follows one pending booking from the requester's side. It
// counts down the response window, re-polls the booking status and re-sends
// the buzzer until the booking resolves, the window lapses or the requester
// gives up.
package watcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"

	"go.uber.org/zap"
)

// State is the watcher's view of the booking.
type State string

const (
	Waiting   State = "waiting"
	Accepted  State = "accepted"
	Rejected  State = "rejected"
	Expired   State = "expired"
	Cancelled State = "cancelled"
)

// Terminal reports whether s ends the watch.
func (s State) Terminal() bool { return s != Waiting }

var ErrAlreadyRunning = errors.New("watcher is already running")

// StatusSource is the server side the watcher talks to.
type StatusSource interface {
	PollBookingStatus(ctx context.Context, bookingID string) (*models.BookingStatusView, error)
	SendBuzzer(ctx context.Context, bookingID string) error
}

// Options configures a Watcher. Zero values fall back to the defaults.
type Options struct {
	Window         time.Duration
	PollInterval   time.Duration
	BuzzerInterval time.Duration
	// RequestTimeout bounds each poll and buzzer call so a slow server cannot
	// hold back the countdown. Defaults to PollInterval.
	RequestTimeout time.Duration
	Clock          Clock
	Logger         *zap.Logger
	// OnTransition is called once, with the terminal state and the last
	// status seen from the server (nil if none arrived).
	OnTransition func(State, *models.BookingStatusView)
}

const (
	DefaultWindow         = 180 * time.Second
	DefaultPollInterval   = 3 * time.Second
	DefaultBuzzerInterval = 30 * time.Second
)

// Watcher is the per-booking countdown, poll and buzzer loop. The countdown,
// a poll result and Cancel all race to end it; exactly one wins.
type Watcher struct {
	bookingID string
	source    StatusSource
	opts      Options
	logger    *zap.Logger

	mu       sync.Mutex
	state    State
	last     *models.BookingStatusView
	deadline time.Time
	running  bool

	resume chan struct{}
	done   chan struct{}
}

func New(bookingID string, source StatusSource, opts Options) (*Watcher, error) {
	if bookingID == "" {
		return nil, errors.New("watcher: booking id is required")
	}
	if source == nil {
		return nil, errors.New("watcher: status source is nil")
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.BuzzerInterval <= 0 {
		opts.BuzzerInterval = DefaultBuzzerInterval
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = opts.PollInterval
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Watcher{
		bookingID: bookingID,
		source:    source,
		opts:      opts,
		logger:    opts.Logger.With(zap.String("bookingId", bookingID)),
		state:     Waiting,
		resume:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Run blocks until the watch ends and returns the final state. Cancelling
// ctx cancels the watch.
func (w *Watcher) Run(ctx context.Context) (State, error) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return w.State(), ErrAlreadyRunning
	}
	w.running = true
	w.deadline = w.opts.Clock.Now().Add(w.opts.Window)
	w.mu.Unlock()

	countdown := w.opts.Clock.NewTimer(w.opts.Window)
	defer countdown.Stop()
	poll := w.opts.Clock.NewTicker(w.opts.PollInterval)
	defer poll.Stop()
	buzzer := w.opts.Clock.NewTicker(w.opts.BuzzerInterval)
	defer buzzer.Stop()

	w.logger.Debug("Watching booking", zap.Duration("window", w.opts.Window))

	for {
		select {
		case <-w.done:
			return w.State(), nil
		case <-ctx.Done():
			w.Cancel()
			return w.State(), ctx.Err()
		case <-countdown.C:
			w.transition(Expired, nil)
		case <-poll.C:
			w.poll(ctx)
		case <-w.resume:
			w.poll(ctx)
		case <-buzzer.C:
			w.buzz(ctx)
		}
	}
}

// Cancel ends the watch locally. It does not touch the booking: an accept
// that already landed on the server still stands.
func (w *Watcher) Cancel() {
	w.transition(Cancelled, nil)
}

// Resume asks for an immediate re-poll, for use after the process was
// suspended and timers may have been held back.
func (w *Watcher) Resume() {
	select {
	case w.resume <- struct{}{}:
	default:
	}
}

func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Last returns the most recent status seen from the server.
func (w *Watcher) Last() *models.BookingStatusView {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		return nil
	}
	v := *w.last
	return &v
}

// Remaining is the local countdown; zero before Run starts or once lapsed.
func (w *Watcher) Remaining() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.deadline.IsZero() {
		return 0
	}
	if left := w.deadline.Sub(w.opts.Clock.Now()); left > 0 {
		return left
	}
	return 0
}

// Done is closed on the terminal transition.
func (w *Watcher) Done() <-chan struct{} { return w.done }

func (w *Watcher) poll(ctx context.Context) {
	if w.State() != Waiting {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, w.opts.RequestTimeout)
	defer cancel()
	view, err := w.source.PollBookingStatus(ctx, w.bookingID)
	if err != nil {
		w.logger.Debug("Status poll failed", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.last = view
	lapsed := !w.opts.Clock.Now().Before(w.deadline)
	w.mu.Unlock()

	switch view.Status {
	case models.StatusAccepted, models.StatusCompleted:
		w.transition(Accepted, view)
	case models.StatusRejected:
		w.transition(Rejected, view)
	case models.StatusExpired:
		w.transition(Expired, view)
	case models.StatusCancelled:
		w.transition(Cancelled, view)
	default:
		if lapsed {
			w.transition(Expired, view)
		}
	}
}

func (w *Watcher) buzz(ctx context.Context) {
	if w.State() != Waiting {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, w.opts.RequestTimeout)
	defer cancel()
	if err := w.source.SendBuzzer(ctx, w.bookingID); err != nil {
		w.logger.Debug("Buzzer failed", zap.Error(err))
	}
}

// transition is the only writer of state. It reports whether this call won.
func (w *Watcher) transition(to State, view *models.BookingStatusView) bool {
	w.mu.Lock()
	if w.state != Waiting {
		w.mu.Unlock()
		return false
	}
	w.state = to
	if view != nil {
		w.last = view
	}
	last := w.last
	close(w.done)
	w.mu.Unlock()

	w.logger.Info("Watch finished", zap.String("state", string(to)))
	if w.opts.OnTransition != nil {
		w.opts.OnTransition(to, last)
	}
	return true
}
