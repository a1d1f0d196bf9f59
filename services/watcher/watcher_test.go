package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"
)

type fakeSource struct {
	mu      sync.Mutex
	status  models.BookingStatus
	err     error
	polls   int
	buzzers int
}

func (s *fakeSource) PollBookingStatus(_ context.Context, bookingID string) (*models.BookingStatusView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.BookingStatusView{BookingID: bookingID, Status: s.status}, nil
}

func (s *fakeSource) SendBuzzer(context.Context, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buzzers++
	return s.err
}

func (s *fakeSource) set(status models.BookingStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *fakeSource) counts() (polls, buzzers int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls, s.buzzers
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

type run struct {
	state State
	err   error
}

// start runs w in the background once its timers are registered.
func start(t *testing.T, w *Watcher, clock *fakeClock) <-chan run {
	t.Helper()
	out := make(chan run, 1)
	go func() {
		state, err := w.Run(context.Background())
		out <- run{state, err}
	}()
	clock.WaitForTimers(3)
	return out
}

func finished(t *testing.T, out <-chan run) run {
	t.Helper()
	select {
	case r := <-out:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
		return run{}
	}
}

func newTestWatcher(t *testing.T, source StatusSource, clock *fakeClock, transitions *[]State) *Watcher {
	t.Helper()
	var mu sync.Mutex
	w, err := New("b1", source, Options{
		Clock: clock,
		OnTransition: func(s State, _ *models.BookingStatusView) {
			mu.Lock()
			defer mu.Unlock()
			if transitions != nil {
				*transitions = append(*transitions, s)
			}
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func TestWatcherExpiresAfterWindow(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC))
	source := &fakeSource{status: models.StatusPending}
	w := newTestWatcher(t, source, clock, nil)
	out := start(t, w, clock)

	for i := 1; i < 60; i++ {
		clock.Advance(DefaultPollInterval)
		waitFor(t, "poll", func() bool { p, _ := source.counts(); return p >= i })
		if i%10 == 0 {
			waitFor(t, "buzzer", func() bool { _, b := source.counts(); return b >= i/10 })
		}
		if w.State() != Waiting {
			t.Fatalf("state = %s after %d polls, want waiting", w.State(), i)
		}
	}
	if got := w.Remaining(); got != DefaultPollInterval {
		t.Errorf("Remaining = %v, want %v", got, DefaultPollInterval)
	}

	clock.Advance(DefaultPollInterval)
	r := finished(t, out)
	if r.state != Expired || r.err != nil {
		t.Fatalf("Run = %s, %v; want expired", r.state, r.err)
	}
	if w.Remaining() != 0 {
		t.Errorf("Remaining = %v after expiry", w.Remaining())
	}

	polls, buzzers := source.counts()
	clock.Advance(time.Minute)
	if p, b := source.counts(); p != polls || b != buzzers {
		t.Error("watcher kept polling after it expired")
	}
}

func TestWatcherAcceptedByPoll(t *testing.T) {
	clock := newFakeClock(time.Now())
	source := &fakeSource{status: models.StatusPending}
	var transitions []State
	w := newTestWatcher(t, source, clock, &transitions)
	out := start(t, w, clock)

	clock.Advance(DefaultPollInterval)
	waitFor(t, "first poll", func() bool { p, _ := source.counts(); return p == 1 })
	source.set(models.StatusAccepted)
	clock.Advance(DefaultPollInterval)

	r := finished(t, out)
	if r.state != Accepted {
		t.Fatalf("state = %s, want accepted", r.state)
	}
	if last := w.Last(); last == nil || last.Status != models.StatusAccepted {
		t.Errorf("Last = %+v", last)
	}

	w.Cancel()
	clock.Advance(DefaultWindow)
	if w.State() != Accepted || len(transitions) != 1 {
		t.Errorf("state = %s transitions = %v, want a single accepted transition", w.State(), transitions)
	}
}

func TestWatcherServerStatuses(t *testing.T) {
	tests := []struct {
		server models.BookingStatus
		want   State
	}{
		{models.StatusCompleted, Accepted},
		{models.StatusRejected, Rejected},
		{models.StatusExpired, Expired},
		{models.StatusCancelled, Cancelled},
	}
	for _, tt := range tests {
		t.Run(string(tt.server), func(t *testing.T) {
			clock := newFakeClock(time.Now())
			w := newTestWatcher(t, &fakeSource{status: tt.server}, clock, nil)
			out := start(t, w, clock)

			w.Resume()
			if r := finished(t, out); r.state != tt.want {
				t.Errorf("state = %s, want %s", r.state, tt.want)
			}
		})
	}
}

func TestWatcherCancel(t *testing.T) {
	clock := newFakeClock(time.Now())
	source := &fakeSource{status: models.StatusPending}
	w := newTestWatcher(t, source, clock, nil)
	out := start(t, w, clock)

	w.Cancel()
	r := finished(t, out)
	if r.state != Cancelled || r.err != nil {
		t.Fatalf("Run = %s, %v; want cancelled", r.state, r.err)
	}
	select {
	case <-w.Done():
	default:
		t.Error("Done not closed after cancel")
	}

	source.set(models.StatusAccepted)
	w.Resume()
	clock.Advance(DefaultWindow)
	if w.State() != Cancelled {
		t.Errorf("state changed to %s after cancel", w.State())
	}
}

func TestWatcherSingleTransitionUnderRace(t *testing.T) {
	for i := 0; i < 50; i++ {
		clock := newFakeClock(time.Now())
		source := &fakeSource{status: models.StatusAccepted}
		var (
			mu    sync.Mutex
			calls int
		)
		w, err := New("b1", source, Options{
			Clock: clock,
			OnTransition: func(State, *models.BookingStatusView) {
				mu.Lock()
				calls++
				mu.Unlock()
			},
		})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		out := start(t, w, clock)

		var wg sync.WaitGroup
		wg.Add(3)
		go func() { defer wg.Done(); w.Cancel() }()
		go func() { defer wg.Done(); clock.Advance(DefaultWindow) }()
		go func() { defer wg.Done(); w.Resume() }()
		wg.Wait()
		finished(t, out)

		mu.Lock()
		if calls != 1 {
			t.Fatalf("iteration %d: %d transitions, want 1", i, calls)
		}
		mu.Unlock()
	}
}

func TestWatcherResumeAfterSuspension(t *testing.T) {
	clock := newFakeClock(time.Now())
	source := &fakeSource{status: models.StatusPending}
	w := newTestWatcher(t, source, clock, nil)
	out := start(t, w, clock)

	clock.Advance(time.Second)
	w.Resume()
	waitFor(t, "immediate poll", func() bool { p, _ := source.counts(); return p == 1 })
	if w.State() != Waiting {
		t.Fatalf("state = %s, want waiting", w.State())
	}

	// Timers were held back while suspended; the re-poll notices the lapse.
	clock.Jump(DefaultWindow)
	w.Resume()
	if r := finished(t, out); r.state != Expired {
		t.Errorf("state = %s, want expired", r.state)
	}
}

func TestWatcherIgnoresSourceErrors(t *testing.T) {
	clock := newFakeClock(time.Now())
	source := &fakeSource{err: errors.New("connection refused")}
	w := newTestWatcher(t, source, clock, nil)
	out := start(t, w, clock)

	for i := 1; i <= 10; i++ {
		clock.Advance(DefaultPollInterval)
		waitFor(t, "poll", func() bool { p, _ := source.counts(); return p >= i })
	}
	waitFor(t, "buzzer", func() bool { _, b := source.counts(); return b >= 1 })
	if w.State() != Waiting {
		t.Fatalf("state = %s after failing polls, want waiting", w.State())
	}
	if w.Last() != nil {
		t.Error("Last should stay nil when no poll succeeded")
	}
	w.Cancel()
	finished(t, out)
}

func TestWatcherContextCancel(t *testing.T) {
	clock := newFakeClock(time.Now())
	w := newTestWatcher(t, &fakeSource{status: models.StatusPending}, clock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan run, 1)
	go func() {
		state, err := w.Run(ctx)
		out <- run{state, err}
	}()
	clock.WaitForTimers(3)
	cancel()

	r := finished(t, out)
	if r.state != Cancelled || !errors.Is(r.err, context.Canceled) {
		t.Fatalf("Run = %s, %v; want cancelled with context.Canceled", r.state, r.err)
	}
	if _, err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run err = %v, want ErrAlreadyRunning", err)
	}
}

func TestNewRequiresBookingAndSource(t *testing.T) {
	if _, err := New("", &fakeSource{}, Options{}); err == nil {
		t.Error("expected an error for an empty booking id")
	}
	if _, err := New("b1", nil, Options{}); err == nil {
		t.Error("expected an error for a nil source")
	}
}

// hangingSource never answers until the caller gives up.
type hangingSource struct {
	mu          sync.Mutex
	calls       int
	hadDeadline bool
}

func (s *hangingSource) PollBookingStatus(ctx context.Context, _ string) (*models.BookingStatusView, error) {
	s.mu.Lock()
	s.calls++
	_, ok := ctx.Deadline()
	s.hadDeadline = ok
	s.mu.Unlock()
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s *hangingSource) SendBuzzer(ctx context.Context, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestWatcherSlowPollDoesNotHoldCountdown(t *testing.T) {
	clock := newFakeClock(time.Now())
	source := &hangingSource{}
	w, err := New("b1", source, Options{Clock: clock, RequestTimeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := start(t, w, clock)

	clock.Advance(DefaultPollInterval)
	waitFor(t, "poll", func() bool {
		source.mu.Lock()
		defer source.mu.Unlock()
		return source.calls >= 1
	})
	clock.Advance(DefaultWindow)

	r := finished(t, out)
	if r.state != Expired {
		t.Fatalf("Run = %s, want expired", r.state)
	}
	source.mu.Lock()
	defer source.mu.Unlock()
	if !source.hadDeadline {
		t.Error("poll was called without a deadline")
	}
}
