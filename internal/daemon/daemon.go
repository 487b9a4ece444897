package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/timemory/doxsite/internal/config"
	"github.com/timemory/doxsite/internal/errors"
	"github.com/timemory/doxsite/internal/events"
	"github.com/timemory/doxsite/internal/history"
	"github.com/timemory/doxsite/internal/layout"
	"github.com/timemory/doxsite/internal/logfields"
	"github.com/timemory/doxsite/internal/metrics"
	"github.com/timemory/doxsite/internal/pipeline"
	"github.com/timemory/doxsite/internal/server"
)

// Daemon runs the continuous documentation build service: filesystem watch,
// periodic refresh, build history, event publishing, and the preview server.
type Daemon struct {
	cfg    *config.Config
	layout *layout.Layout

	store     *history.Store
	publisher events.Publisher
	recorder  *metrics.PrometheusRecorder
	registry  *prom.Registry
	debouncer *Debouncer

	buildRunning atomic.Bool
}

// New wires the daemon from configuration.
func New(cfg *config.Config) (*Daemon, error) {
	lay, err := layout.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	store, err := history.NewStore(cfg.Daemon.HistoryDB)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryDaemon, errors.SeverityFatal, "failed to open build history")
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Daemon.NATS.Enabled {
		pub, perr := events.NewNATSPublisher(cfg.Daemon.NATS)
		if perr != nil {
			_ = store.Close()
			return nil, errors.Wrap(perr, errors.CategoryDaemon, errors.SeverityFatal, "failed to connect event publisher")
		}
		publisher = pub
	}

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	d := &Daemon{
		cfg:       cfg,
		layout:    lay,
		store:     store,
		publisher: publisher,
		recorder:  recorder,
		registry:  registry,
	}

	d.debouncer, err = NewDebouncer(DebouncerConfig{
		QuietWindow:       cfg.Watch.QuietWindowDuration(),
		MaxDelay:          cfg.Watch.MaxDelayDuration(),
		CheckBuildRunning: d.buildRunning.Load,
	})
	if err != nil {
		_ = store.Close()
		publisher.Close()
		return nil, err
	}

	return d, nil
}

// watchSuppressions lists everything the daemon itself writes under the
// watched tree: the pipeline's build outputs plus the history database.
// Without these a finished build would immediately queue the next one.
func (d *Daemon) watchSuppressions() []string {
	outputs := d.layout.BuildOutputs()
	if db, err := filepath.Abs(d.cfg.Daemon.HistoryDB); err == nil {
		outputs = append(outputs, filepath.Dir(db))
	}
	return outputs
}

// Run serves until the context is canceled. An initial build runs at startup
// so the preview never serves a stale or empty tree.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.close()

	scheduler, err := NewScheduler()
	if err != nil {
		return errors.Wrap(err, errors.CategoryDaemon, errors.SeverityFatal, "failed to create scheduler")
	}
	if _, err := scheduler.SchedulePeriodicRebuild(d.cfg.Daemon.IntervalDuration(), d.debouncer.Request); err != nil {
		return errors.Wrap(err, errors.CategoryDaemon, errors.SeverityFatal, "failed to schedule periodic rebuild")
	}

	watcher := NewWatcher([]string{d.layout.SourceRoot}, d.cfg.Watch.Ignore, d.watchSuppressions(), d.debouncer.Request)

	srv := server.New(server.Options{
		Addr:     d.cfg.Daemon.Listen,
		DocsRoot: d.layout.DocsDir,
		History:  d.store,
		Metrics:  metrics.HTTPHandler(d.registry),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 3)

	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				slog.Error("daemon component failed",
					slog.String("component", name),
					logfields.Error(err))
				errCh <- err
				cancel()
			}
		}()
	}

	run("debouncer", d.debouncer.Run)
	run("watcher", watcher.Run)
	run("server", srv.Run)

	scheduler.Start()
	defer func() {
		if serr := scheduler.Stop(); serr != nil {
			slog.Warn("scheduler shutdown failed", logfields.Error(serr))
		}
	}()

	slog.Info("daemon started",
		slog.String("listen", d.cfg.Daemon.Listen),
		logfields.Path(d.layout.SourceRoot))

	d.runBuild(ctx, Rebuild{TriggeredAt: time.Now(), LastReason: "manual", RequestCount: 1})

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			select {
			case err := <-errCh:
				return err
			default:
				return nil
			}
		case rebuild := <-d.debouncer.Rebuilds():
			d.runBuild(ctx, rebuild)
		}
	}
}

// Watch runs only the watcher, debouncer, and build loop.
func (d *Daemon) Watch(ctx context.Context) error {
	watcher := NewWatcher([]string{d.layout.SourceRoot}, d.cfg.Watch.Ignore, d.watchSuppressions(), d.debouncer.Request)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer d.close()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				slog.Error("watch component failed",
					slog.String("component", name),
					logfields.Error(err))
				errCh <- err
				cancel()
			}
		}()
	}

	run("debouncer", d.debouncer.Run)
	run("watcher", watcher.Run)

	slog.Info("watching for changes", logfields.Path(d.layout.SourceRoot))

	d.runBuild(ctx, Rebuild{TriggeredAt: time.Now(), LastReason: "manual", RequestCount: 1})

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			select {
			case err := <-errCh:
				return err
			default:
				return nil
			}
		case rebuild := <-d.debouncer.Rebuilds():
			d.runBuild(ctx, rebuild)
		}
	}
}

func (d *Daemon) runBuild(ctx context.Context, rebuild Rebuild) {
	if ctx.Err() != nil {
		return
	}

	d.buildRunning.Store(true)
	defer d.buildRunning.Store(false)

	trigger := rebuild.LastReason
	if trigger == "" {
		trigger = "manual"
	}
	d.recorder.IncRebuildTrigger(trigger)

	slog.Info("rebuild triggered",
		slog.String("trigger", trigger),
		slog.String("cause", rebuild.DebounceCause),
		slog.Int("coalesced_requests", rebuild.RequestCount))

	if perr := d.publisher.Publish(events.Event{
		Type:    events.TypeBuildStarted,
		Trigger: trigger,
	}); perr != nil {
		slog.Warn("failed to publish build event", logfields.Error(perr))
	}

	report, err := pipeline.Execute(ctx, d.cfg, pipeline.Options{
		Trigger:  trigger,
		Recorder: d.recorder,
	})
	if err != nil {
		slog.Error("build did not start", logfields.Error(err))
		return
	}

	finished := events.Event{
		Type:    events.TypeBuildFinished,
		BuildID: report.BuildID,
		Outcome: report.Outcome,
		Trigger: report.Trigger,
		Commit:  report.Commit,
	}
	if report.Err != nil {
		finished.Error = report.Err.Error()
	}
	if perr := d.publisher.Publish(finished); perr != nil {
		slog.Warn("failed to publish build event", logfields.Error(perr))
	}

	if herr := d.store.Record(ctx, report.HistoryRecord()); herr != nil {
		slog.Warn("failed to record build history", logfields.Error(herr))
	}

	// One retry per failure: a retry that fails again waits for the next
	// source change or scheduled run.
	if report.Outcome == pipeline.OutcomeFailed && errors.IsRetryable(report.Err) && trigger != "retry" {
		slog.Warn("build failed with a retryable error, queueing one retry",
			logfields.BuildID(report.BuildID))
		d.debouncer.Request(Request{Reason: "retry", RequestedAt: time.Now()})
	}
}

func (d *Daemon) close() {
	d.publisher.Close()
	if err := d.store.Close(); err != nil {
		slog.Warn("failed to close build history", logfields.Error(err))
	}
}
