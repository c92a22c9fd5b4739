// Package refresh runs the periodic fetch-and-aggregate cycle and publishes
// its result for readers.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"transferdash/internal/core"
	"transferdash/internal/log"
	"transferdash/internal/sheets"
)

// DefaultInterval is the wait between cycles.
const DefaultInterval = 45 * time.Second

// Subscriber is told about every completed cycle.
type Subscriber func(ctx context.Context, st State)

// Options configures a Refresher.
type Options struct {
	Interval     time.Duration
	BackoffMax   time.Duration
	FetchTimeout time.Duration
	Clock        Clock
	Logger       *log.Logger
}

// Refresher owns the refresh cycle. Readers only see complete States.
type Refresher struct {
	source sheets.TransferReader
	opts   Options
	logger *log.StructuredLogger

	mu    sync.RWMutex
	state State

	subMu sync.Mutex
	subs  []Subscriber
}

// New returns a Refresher in the pending state.
func New(source sheets.TransferReader, opts Options) *Refresher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock.Now == nil || opts.Clock.After == nil {
		opts.Clock = SystemClock(nil)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	return &Refresher{
		source: source,
		opts:   opts,
		logger: log.NewStructuredLogger(opts.Logger),
		state:  PendingState(opts.Clock.Now()),
	}
}

// Interval returns the configured wait between successful cycles.
func (r *Refresher) Interval() time.Duration {
	return r.opts.Interval
}

// Current returns the latest published state.
func (r *Refresher) Current() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// OnCycle registers fn to run after every cycle, in registration order.
func (r *Refresher) OnCycle(fn Subscriber) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	r.subs = append(r.subs, fn)
}

// Run cycles until ctx is cancelled. It never returns early on fetch errors.
func (r *Refresher) Run(ctx context.Context) error {
	for {
		st := r.RunOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-r.opts.Clock.After(st.NextRefreshAt.Sub(st.UpdatedAt)):
		}
	}
}

// RunOnce performs one fetch and aggregation, publishes the resulting state
// and returns it.
func (r *Refresher) RunOnce(ctx context.Context) State {
	start := r.opts.Clock.Now()
	records, err := r.fetch(ctx)
	now := r.opts.Clock.Now()

	prev := r.Current()
	st := State{UpdatedAt: now, Took: now.Sub(start)}
	if err != nil {
		st.Status = StatusError
		st.Err = err.Error()
		st.Snapshot = core.EmptySnapshot(now)
		st.ConsecutiveFailures = prev.ConsecutiveFailures + 1
	} else {
		st.Snapshot = core.Aggregate(records, now)
		st.Status = StatusOK
		if st.Snapshot.Empty {
			st.Status = StatusEmpty
		}
	}
	st.NextRefreshAt = now.Add(NextWait(r.opts.Interval, r.opts.BackoffMax, st.ConsecutiveFailures))

	r.mu.Lock()
	r.state = st
	r.mu.Unlock()

	r.logger.LogCycle(ctx, string(st.Status), st.Snapshot.Total, st.Snapshot.Count(core.WindowToday),
		st.Snapshot.Skipped, st.ConsecutiveFailures, err)

	r.subMu.Lock()
	subs := append([]Subscriber(nil), r.subs...)
	r.subMu.Unlock()
	for _, fn := range subs {
		fn(ctx, st)
	}
	return st
}

func (r *Refresher) fetch(ctx context.Context) (records []core.TransferRecord, err error) {
	if r.source == nil {
		return nil, fmt.Errorf("no data source: %w", sheets.ErrNotConfigured)
	}
	if r.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.FetchTimeout)
		defer cancel()
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("data source panicked: %v", p)
		}
	}()
	records, err = r.source.ReadTransfers(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("fetch timed out after %s: %w", r.opts.FetchTimeout, err)
	}
	return records, err
}
