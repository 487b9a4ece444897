// Package daemon keeps the documentation continuously built: it watches the
// source tree, coalesces change bursts into single rebuilds, runs periodic
// refresh builds, and serves the preview and operational endpoints.
package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/timemory/doxsite/internal/errors"
)

// Request asks for a rebuild of the documentation.
type Request struct {
	Reason      string // watch|schedule|manual
	Path        string // changed path, when known
	RequestedAt time.Time
}

// Rebuild is the coalesced outcome of one or more requests.
type Rebuild struct {
	TriggeredAt   time.Time
	RequestCount  int
	LastReason    string
	LastPath      string
	FirstRequest  time.Time
	LastRequest   time.Time
	DebounceCause string // quiet|max_delay|after_running
}

// DebouncerConfig tunes rebuild coalescing.
type DebouncerConfig struct {
	QuietWindow time.Duration
	MaxDelay    time.Duration

	// CheckBuildRunning reports whether a build is currently running.
	// When true, the debouncer holds the rebuild and emits exactly one
	// follow-up after the running build finishes.
	CheckBuildRunning func() bool

	// PollInterval controls how often the debouncer polls for build
	// completion once it has detected a running build.
	PollInterval time.Duration
}

// Debouncer coalesces bursts of rebuild requests into a single Rebuild:
// a quiet window must elapse after the last request, but the first request
// cannot be postponed past the max delay. It is safe to run as a single
// goroutine.
type Debouncer struct {
	cfg DebouncerConfig

	requests chan Request
	rebuilds chan Rebuild

	mu              sync.Mutex
	pending         bool
	pendingAfterRun bool
	pollingAfterRun bool
	firstRequestAt  time.Time
	lastRequestAt   time.Time
	lastReason      string
	lastPath        string
	requestCount    int
}

// NewDebouncer validates the configuration and creates a debouncer.
func NewDebouncer(cfg DebouncerConfig) (*Debouncer, error) {
	if cfg.QuietWindow <= 0 {
		return nil, errors.ValidationFailed("quiet_window", "must be > 0")
	}
	if cfg.MaxDelay <= 0 {
		return nil, errors.ValidationFailed("max_delay", "must be > 0")
	}
	if cfg.CheckBuildRunning == nil {
		cfg.CheckBuildRunning = func() bool { return false }
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}

	return &Debouncer{
		cfg:      cfg,
		requests: make(chan Request, 64),
		rebuilds: make(chan Rebuild, 1),
	}, nil
}

// Request submits a rebuild request. It never blocks; when the queue is full
// the request is dropped, which is harmless because a rebuild is already due.
func (d *Debouncer) Request(req Request) {
	select {
	case d.requests <- req:
	default:
	}
}

// Rebuilds delivers coalesced rebuild triggers.
func (d *Debouncer) Rebuilds() <-chan Rebuild {
	return d.rebuilds
}

// Run processes requests until the context is canceled.
func (d *Debouncer) Run(ctx context.Context) error {
	stopped := func(t *time.Timer) *time.Timer {
		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
		return t
	}
	quietTimer := stopped(time.NewTimer(time.Hour))
	maxTimer := stopped(time.NewTimer(time.Hour))
	pollTimer := stopped(time.NewTimer(time.Hour))

	var (
		quietC <-chan time.Time
		maxC   <-chan time.Time
		pollC  <-chan time.Time
	)

	resetTimer := func(t *time.Timer, after time.Duration) {
		stopped(t)
		t.Reset(after)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case req := <-d.requests:
			d.onRequest(req)

			resetTimer(quietTimer, d.cfg.QuietWindow)
			quietC = quietTimer.C

			if d.shouldStartMaxTimer() {
				resetTimer(maxTimer, d.cfg.MaxDelay)
				maxC = maxTimer.C
			}

		case <-quietC:
			if d.tryEmit("quiet") {
				quietC = nil
				maxC = nil
			}
			// else: build running; follow-up is held until completion.

		case <-maxC:
			if d.tryEmit("max_delay") {
				quietC = nil
				maxC = nil
			}

		case <-pollC:
			if d.tryEmitAfterRunning() {
				pollC = nil
				quietC = nil
				maxC = nil
				continue
			}
			resetTimer(pollTimer, d.cfg.PollInterval)
			pollC = pollTimer.C
		}

		if d.shouldPollAfterRun() && pollC == nil {
			resetTimer(pollTimer, d.cfg.PollInterval)
			pollC = pollTimer.C
		}
	}
}

func (d *Debouncer) onRequest(req Request) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := req.RequestedAt
	if now.IsZero() {
		now = time.Now()
	}

	if !d.pending {
		d.pending = true
		d.firstRequestAt = now
		d.requestCount = 0
	}

	d.lastRequestAt = now
	d.lastReason = req.Reason
	d.lastPath = req.Path
	d.requestCount++
}

func (d *Debouncer) shouldStartMaxTimer() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending && d.requestCount == 1
}

func (d *Debouncer) shouldPollAfterRun() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingAfterRun && !d.pollingAfterRun
}

func (d *Debouncer) tryEmit(cause string) bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return true
	}
	first := d.firstRequestAt
	last := d.lastRequestAt
	count := d.requestCount
	reason := d.lastReason
	path := d.lastPath

	if d.cfg.CheckBuildRunning() {
		d.pendingAfterRun = true
		d.mu.Unlock()
		return false
	}

	d.pending = false
	d.pendingAfterRun = false
	d.pollingAfterRun = false
	d.mu.Unlock()

	evt := Rebuild{
		TriggeredAt:   time.Now(),
		RequestCount:  count,
		LastReason:    reason,
		LastPath:      path,
		FirstRequest:  first,
		LastRequest:   last,
		DebounceCause: cause,
	}
	select {
	case d.rebuilds <- evt:
	default:
		// A rebuild is already queued; it will pick up the latest tree state.
	}
	return true
}

func (d *Debouncer) tryEmitAfterRunning() bool {
	d.mu.Lock()
	if !d.pendingAfterRun {
		d.mu.Unlock()
		return true
	}
	d.pollingAfterRun = true
	d.mu.Unlock()

	if d.cfg.CheckBuildRunning() {
		return false
	}

	// Build finished; emit exactly one follow-up.
	return d.tryEmit("after_running")
}
