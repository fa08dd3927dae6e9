// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mattn/go-shellwords"

	"github.com/youjianchi/quickPoll/models"
	"github.com/youjianchi/quickPoll/watcher"
)

const watchHelp = `Commands:
  load POLL_ID                  Follow another poll
  vote OPTION_ID                Vote on the poll being shown
  create "QUESTION" OPTION...   Create a poll and follow it
  stop                          Stop refreshing
  quit                          Leave
`

// watch follows a poll, re-rendering whenever its counts change, and reads
// commands from stdin until quit or EOF.
func (a *app) watch(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errUsage
	}

	w := watcher.New(a.api,
		watcher.WithInterval(a.interval),
		watcher.WithLogger(a.logger),
		watcher.WithListener(a.onSnapshot),
	)
	defer w.Stop()

	if len(args) == 1 {
		if quit := a.watchCommand(ctx, w, []string{"load", args[0]}); quit {
			return nil
		}
	}

	lines := make(chan string)
	scanErr := make(chan error, 1)
	left := make(chan struct{})
	defer close(left)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(a.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-left:
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			words, err := shellwords.Parse(line)
			if err != nil {
				a.printf("! %v\n", err)
				continue
			}
			if len(words) == 0 {
				continue
			}
			if quit := a.watchCommand(ctx, w, words); quit {
				return nil
			}
		}
	}
}

// watchCommand runs one interactive command. Failures are printed, never
// returned, so the session keeps going.
func (a *app) watchCommand(ctx context.Context, w *watcher.Watcher, words []string) (quit bool) {
	switch words[0] {
	case "quit", "exit":
		return true

	case "help":
		a.printf("%s", watchHelp)

	case "stop":
		w.Stop()
		a.printf("Stopped refreshing.\n")

	case "load":
		if len(words) != 2 {
			a.printf("! usage: load POLL_ID\n")
			return false
		}
		pollID, err := parseID("poll id", words[1])
		if err != nil {
			a.printf("! %v\n", err)
			return false
		}
		if _, err := w.Load(ctx, pollID); err != nil {
			a.printf("! %v\n", err)
		}

	case "vote":
		if len(words) != 2 {
			a.printf("! usage: vote OPTION_ID\n")
			return false
		}
		current, ok := w.Snapshot()
		if !ok {
			a.printf("! no poll loaded; use: load POLL_ID\n")
			return false
		}
		optionID, err := parseID("option id", words[1])
		if err != nil {
			a.printf("! %v\n", err)
			return false
		}
		poll, err := a.api.Vote(ctx, current.ID, optionID)
		if err != nil {
			a.printf("! %v\n", err)
			return false
		}
		w.Track(poll)

	case "create":
		if len(words) < 2 {
			a.printf("! usage: create \"QUESTION\" OPTION...\n")
			return false
		}
		poll, err := a.createPoll(ctx, words[1], words[2:])
		if err != nil {
			a.printf("! %v\n", err)
			return false
		}
		w.Track(poll)

	default:
		a.printf("! unknown command %q; type help\n", words[0])
	}
	return false
}

// onSnapshot renders a changed snapshot. It runs inside the watcher's lock.
func (a *app) onSnapshot(poll models.Poll, ok bool) {
	a.outMu.Lock()
	defer a.outMu.Unlock()

	if !ok {
		if a.rendered != nil {
			fmt.Fprintln(a.out, "(no poll loaded)")
		}
		a.rendered = nil
		return
	}
	if a.rendered != nil && samePoll(*a.rendered, poll) {
		return
	}
	renderPoll(a.out, poll, a.now())
	a.rendered = &poll
}
