// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package watcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/youjianchi/quickPoll/client"
	"github.com/youjianchi/quickPoll/models"
)

const (
	DefaultInterval = 2 * time.Second
	DefaultTimeout  = 10 * time.Second
)

// Fetcher loads a poll by id. *client.Client satisfies it.
type Fetcher interface {
	FetchPoll(ctx context.Context, pollID int64) (models.Poll, error)
}

// Listener receives every snapshot change. ok is false when the snapshot
// was cleared. It runs with the watcher locked and must not call back into
// the Watcher.
type Listener func(poll models.Poll, ok bool)

type Option func(*Watcher)

func WithInterval(d time.Duration) Option {
	return func(w *Watcher) { w.interval = d }
}

// WithTimeout bounds each background fetch
func WithTimeout(d time.Duration) Option {
	return func(w *Watcher) { w.timeout = d }
}

func WithListener(fn Listener) Option {
	return func(w *Watcher) { w.listener = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// Watcher keeps one poll snapshot fresh by re-fetching it on an interval.
// At most one session (poll id plus refresh goroutine) is live at a time.
type Watcher struct {
	fetcher  Fetcher
	interval time.Duration
	timeout  time.Duration
	listener Listener
	logger   *slog.Logger

	mu       sync.Mutex
	session  uint64
	writes   uint64
	pollID   int64
	cancel   context.CancelFunc
	done     chan struct{}
	snapshot models.Poll
	hasPoll  bool
}

func New(fetcher Fetcher, opts ...Option) *Watcher {
	w := &Watcher{
		fetcher:  fetcher,
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins a session for pollID. Any previous session is cancelled, and
// its goroutine has exited, before Start returns. A snapshot of a different
// poll is cleared so Snapshot never disagrees with Active.
func (w *Watcher) Start(pollID int64) {
	w.mu.Lock()
	prev := w.startLocked(pollID)
	if w.hasPoll && w.snapshot.ID != pollID {
		w.setLocked(models.Poll{}, false)
	}
	w.mu.Unlock()
	wait(prev)
}

// Stop ends the current session, if any. The snapshot is kept.
func (w *Watcher) Stop() {
	w.mu.Lock()
	prev := w.stopLocked()
	w.mu.Unlock()
	wait(prev)
}

// Load fetches pollID on behalf of the user. On success the snapshot is
// replaced and a session for that poll runs. A not-found reply stops the
// session and clears the snapshot. Other errors leave everything as it was.
func (w *Watcher) Load(ctx context.Context, pollID int64) (models.Poll, error) {
	poll, err := w.fetcher.FetchPoll(ctx, pollID)
	if errors.Is(err, client.ErrNotFound) {
		w.mu.Lock()
		prev := w.stopLocked()
		w.setLocked(models.Poll{}, false)
		w.mu.Unlock()
		wait(prev)
		return models.Poll{}, err
	}
	if err != nil {
		return models.Poll{}, err
	}

	w.Track(poll)
	return poll, nil
}

// Track replaces the snapshot with poll, typically the reply to a create or
// vote, and makes sure a session is running for it.
func (w *Watcher) Track(poll models.Poll) {
	w.mu.Lock()
	var prev chan struct{}
	if w.cancel == nil || w.pollID != poll.ID {
		prev = w.startLocked(poll.ID)
	}
	w.setLocked(poll, true)
	w.mu.Unlock()
	wait(prev)
}

// Snapshot returns the latest poll, if any
func (w *Watcher) Snapshot() (models.Poll, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot, w.hasPoll
}

// Active returns the poll id of the running session
func (w *Watcher) Active() (int64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pollID, w.cancel != nil
}

func (w *Watcher) startLocked(pollID int64) chan struct{} {
	prev := w.stopLocked()

	w.session++
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	w.pollID, w.cancel, w.done = pollID, cancel, done

	go w.run(ctx, w.session, pollID, done)
	return prev
}

func (w *Watcher) stopLocked() chan struct{} {
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	prev := w.done
	w.cancel, w.done = nil, nil
	return prev
}

// run refreshes pollID until ctx is cancelled. Fetches are issued one at a
// time; ticks that fire while a fetch is in flight are dropped.
func (w *Watcher) run(ctx context.Context, session uint64, pollID int64, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		w.mu.Lock()
		writes := w.writes
		w.mu.Unlock()

		fetchCtx, cancel := context.WithTimeout(ctx, w.timeout)
		poll, err := w.fetcher.FetchPoll(fetchCtx, pollID)
		cancel()

		if ctx.Err() != nil {
			return
		}
		if err != nil {
			w.logger.Warn("poll refresh failed", "poll_id", pollID, "error", err)
			continue
		}
		w.apply(session, writes, poll)
	}
}

// apply stores a background result unless its session has been replaced or
// the snapshot was written after the fetch was issued. writes is the counter
// value read before the fetch.
func (w *Watcher) apply(session, writes uint64, poll models.Poll) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if session != w.session || w.cancel == nil || writes != w.writes {
		return
	}
	w.snapshot, w.hasPoll = poll, true
	w.notifyLocked()
}

// setLocked replaces the snapshot on behalf of the caller. In-flight
// background fetches issued before this point are discarded.
func (w *Watcher) setLocked(poll models.Poll, ok bool) {
	w.writes++
	w.snapshot, w.hasPoll = poll, ok
	w.notifyLocked()
}

func (w *Watcher) notifyLocked() {
	if w.listener != nil {
		w.listener(w.snapshot, w.hasPoll)
	}
}

func wait(done chan struct{}) {
	if done != nil {
		<-done
	}
}
