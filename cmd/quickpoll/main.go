// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/youjianchi/quickPoll/client"
	"github.com/youjianchi/quickPoll/models"
	"github.com/youjianchi/quickPoll/watcher"
)

const usage = `Usage: quickpoll [flags] <command> [args]

Commands:
  signup EMAIL PASSWORD         Create an account
  signin EMAIL PASSWORD         Sign in and remember the session
  signout                       Revoke and forget the session
  whoami                        Show the signed-in user
  create QUESTION OPTION...     Create a poll (requires sign-in)
  show POLL_ID                  Print a poll and its counts
  vote POLL_ID OPTION_ID        Vote for an option
  watch [POLL_ID]               Follow a poll live; type "help" inside

Flags:
`

var errUsage = errors.New("invalid usage")

type app struct {
	settings *settings
	api      *client.Client
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	in io.Reader

	outMu    sync.Mutex
	out      io.Writer
	rendered *models.Poll
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("quickpoll", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	configPath := fs.StringP("config", "c", defaultSettingsPath(), "Config file")
	apiURL := fs.String("api-url", "", "API base URL (saved to the config file)")
	interval := fs.DurationP("interval", "i", watcher.DefaultInterval, "Refresh interval for watch")
	verbose := fs.BoolP("verbose", "v", false, "Log background refresh failures")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	st, err := loadSettings(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "quickpoll: %v\n", err)
		return 1
	}
	if *apiURL != "" {
		st.SetAPIURL(*apiURL)
	}

	api := client.New(st.APIURL())
	api.AccessToken = st.AccessToken()

	a := &app{
		settings: st,
		api:      api,
		interval: *interval,
		logger:   logger,
		now:      time.Now,
		in:       stdin,
		out:      stdout,
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	if err := a.dispatch(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fs.Usage()
			return 2
		}
		fmt.Fprintf(stderr, "quickpoll: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "signup":
		return a.signUp(ctx, args)
	case "signin":
		return a.signIn(ctx, args)
	case "signout":
		return a.signOut(ctx)
	case "whoami":
		return a.whoAmI(ctx)
	case "create":
		return a.create(ctx, args)
	case "show":
		return a.show(ctx, args)
	case "vote":
		return a.vote(ctx, args)
	case "watch":
		return a.watch(ctx, args)
	default:
		return fmt.Errorf("unknown command %q: %w", command, errUsage)
	}
}

func (a *app) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}
