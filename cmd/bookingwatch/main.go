// bookingwatch waits on a booking request the way the resident app does: it
// counts down the response window, polls the booking status and re-sends the
// buzzer until a provider accepts or the window lapses.
//
// Usage:
//
//	bookingwatch --server http://localhost:8080 --token $TOKEN --booking <id>
//
// Every flag can also be set as BOOKINGWATCH_<FLAG> in the environment.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/client"
	"github.com/Hiteshmehtaa/yann-app-sub003/models"
	"github.com/Hiteshmehtaa/yann-app-sub003/services/watcher"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

// run returns 0 when a provider accepted and 2 for any other outcome.
func run(args []string) (int, error) {
	flagSet := pflag.NewFlagSet("bookingwatch", pflag.ContinueOnError)
	flagSet.String("server", "http://localhost:8080", "booking API base URL")
	flagSet.String("token", "", "bearer token of the requesting resident")
	flagSet.String("booking", "", "booking id to watch")
	flagSet.Duration("window", watcher.DefaultWindow, "response window")
	flagSet.Duration("poll", watcher.DefaultPollInterval, "status poll interval")
	flagSet.Duration("buzzer", watcher.DefaultBuzzerInterval, "buzzer interval")
	flagSet.Bool("verbose", false, "log every poll and buzzer")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0, nil
		}
		return 1, err
	}

	v := viper.New()
	v.SetEnvPrefix("BOOKINGWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flagSet); err != nil {
		return 1, err
	}

	bookingID := v.GetString("booking")
	if bookingID == "" {
		return 1, fmt.Errorf("--booking is required")
	}

	logger, err := newLogger(v.GetBool("verbose"))
	if err != nil {
		return 1, err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(bookingID, client.New(v.GetString("server"), v.GetString("token"), nil), watcher.Options{
		Window:         v.GetDuration("window"),
		PollInterval:   v.GetDuration("poll"),
		BuzzerInterval: v.GetDuration("buzzer"),
		Logger:         logger,
		OnTransition: func(s watcher.State, last *models.BookingStatusView) {
			printOutcome(s, last)
		},
	})
	if err != nil {
		return 1, err
	}

	// A stopped and continued process re-polls at once instead of waiting
	// out a tick that may be long overdue.
	cont := make(chan os.Signal, 1)
	signal.Notify(cont, syscall.SIGCONT)
	defer signal.Stop(cont)
	go func() {
		for {
			select {
			case <-cont:
				w.Resume()
			case <-w.Done():
				return
			}
		}
	}()

	go printCountdown(w)

	state, err := w.Run(ctx)
	if err != nil && ctx.Err() == nil {
		return 1, err
	}
	if state != watcher.Accepted {
		return 2, nil
	}
	return 0, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func printCountdown(w *watcher.Watcher) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fmt.Printf("waiting for a provider, %ds left\n", int(w.Remaining().Seconds()))
		case <-w.Done():
			return
		}
	}
}

func printOutcome(s watcher.State, last *models.BookingStatusView) {
	switch s {
	case watcher.Accepted:
		name := "a provider"
		if last != nil && last.ProviderName != "" {
			name = last.ProviderName
		}
		fmt.Printf("accepted by %s\n", name)
	case watcher.Expired:
		fmt.Println("no provider accepted in time")
	case watcher.Rejected:
		fmt.Println("booking was rejected")
	case watcher.Cancelled:
		fmt.Println("stopped watching")
	}
}
