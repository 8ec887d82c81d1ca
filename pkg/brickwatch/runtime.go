package brickwatch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ghalamif/BrickWatch/internal/adapters/archive"
	"github.com/ghalamif/BrickWatch/internal/adapters/journal"
	"github.com/ghalamif/BrickWatch/internal/adapters/observability"
	"github.com/ghalamif/BrickWatch/internal/adapters/oracle"
	"github.com/ghalamif/BrickWatch/internal/adapters/queue"
	"github.com/ghalamif/BrickWatch/internal/app/pipeline"
	"github.com/ghalamif/BrickWatch/internal/domain"
	"github.com/ghalamif/BrickWatch/internal/ports"
)

// ErrJournalFull indicates the event journal is at capacity and
// OnJournalFull != "block"; the triggering mutation is rejected whole.
var ErrJournalFull = errors.New("brickwatch: journal full")

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	dispatcher    Dispatcher
	archiver      Archiver
	journal       EventJournal
	queue         EventQueue
	observability Observability
	registryOpts  []RegistryOption
}

// WithDispatcher injects a custom oracle transport (message bus, test fake).
func WithDispatcher(d Dispatcher) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.dispatcher = d
	}
}

// WithArchiver injects a custom archive backend so events can land anywhere.
func WithArchiver(a Archiver) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.archiver = a
	}
}

// WithJournal lets callers bring their own journal implementation.
func WithJournal(j EventJournal) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.journal = j
	}
}

// WithQueue injects a custom event queue implementation.
func WithQueue(q EventQueue) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.queue = q
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// WithRegistryOptions forwards options to the registry built by the runtime.
func WithRegistryOptions(opts ...RegistryOption) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.registryOpts = append(o.registryOpts, opts...)
	}
}

// Runtime wires the registry, oracle dispatcher, event journal, queue,
// archiver, HTTP API, and metrics endpoint into one node process.
type Runtime struct {
	cfg        *Config
	policy     ports.Policy
	reg        *Registry
	obs        ports.Observability
	journal    ports.EventJournal
	queue      ports.EventQueue
	archiver   ports.Archiver
	dispatcher ports.Dispatcher
	db         *sql.DB

	apiSrv        *http.Server
	metricsSrv    *http.Server
	gaugeStopCh   chan struct{}
	archiveStopCh chan struct{}
	archiveDoneCh chan struct{}
}

// Open loads YAML configuration from disk and builds a Runtime.
func Open(path string, opts ...RuntimeOption) (*Runtime, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return NewRuntime(cfg, opts...)
}

// NewRuntime bootstraps the default adapters (HTTP oracle dispatcher, file
// journal, in-memory queue, Postgres archiver, Prometheus observability).
// RuntimeOption values can override any dependency.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.observability
	if obs == nil {
		obs = observability.NewPromObs()
	}

	var (
		journalAdapter ports.EventJournal
		err            error
	)
	if overrides.journal != nil {
		journalAdapter = overrides.journal
	} else {
		journalAdapter, err = journal.NewFileJournal(cfg.Journal.Dir)
		if err != nil {
			return nil, err
		}
	}

	q := overrides.queue
	if q == nil {
		q = queue.NewMemQueue(cfg.Policy.MaxQueueLen)
	}

	if err := pipeline.ReplayJournal(journalAdapter, q, cfg.Policy, obs); err != nil {
		return nil, err
	}

	dispatcher := overrides.dispatcher
	if dispatcher == nil {
		dispatcher, err = oracle.NewHTTPDispatcher(cfg.Oracle)
		if err != nil {
			return nil, err
		}
	}

	var (
		db       *sql.DB
		archiver ports.Archiver
	)
	if overrides.archiver != nil {
		archiver = overrides.archiver
	} else {
		db, err = sql.Open("postgres", cfg.Archive.ConnString)
		if err != nil {
			return nil, err
		}
		archiver = archive.NewPostgresArchiver(db, cfg.Archive.EventsTable, cfg.Archive.ReadingsTable)
	}

	rt := &Runtime{
		cfg:        cfg,
		policy:     cfg.Policy,
		obs:        obs,
		journal:    journalAdapter,
		queue:      q,
		archiver:   archiver,
		dispatcher: dispatcher,
		db:         db,
	}

	reg, err := NewRegistry(RegistryConfig{
		Owner:       domain.Principal(cfg.Building.Owner),
		Oracle:      domain.Principal(cfg.Building.OraclePrincipal),
		InitialFee:  cfg.Building.InitialFee,
		Jobs:        cfg.JobTable(),
		CallbackURL: cfg.Building.CallbackURL,
	}, dispatcher, rt.emitEvent, overrides.registryOpts...)
	if err != nil {
		return nil, err
	}
	rt.reg = reg
	return rt, nil
}

// Registry exposes the underlying registry for embedding scenarios.
func (rt *Runtime) Registry() *Registry { return rt.reg }

// emitEvent is the registry's notification sink: journal first, then the
// archive queue. A rejected journal append fails the whole mutation.
func (rt *Runtime) emitEvent(e *domain.Event) error {
	if !rt.waitForJournalCapacity() {
		return ErrJournalFull
	}

	id, err := rt.journal.Append(e)
	if err != nil {
		return err
	}

	if !rt.enqueueWithPolicy(id, e) {
		// The event is journaled but not queued; it replays on restart.
		rt.obs.IncCounter(observability.MetricEventsDropped, 1)
	}

	rt.obs.IncCounter(observability.MetricEventsEmitted, 1)
	switch e.Kind {
	case domain.EventUpdateRequested:
		rt.obs.IncCounter(observability.MetricRequestsIssued, 1)
	case domain.EventChannelUpdated:
		rt.obs.IncCounter(observability.MetricFulfillments, 1)
	}
	return nil
}

func (rt *Runtime) waitForJournalCapacity() bool {
	if rt.policy.MaxJournalSizeBytes <= 0 {
		return true
	}
	sleep := rt.policy.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		stats := rt.journal.Stats()
		if stats.SizeBytes < rt.policy.MaxJournalSizeBytes {
			return true
		}
		switch rt.policy.OnJournalFull {
		case "block":
			time.Sleep(sleep)
		default:
			rt.obs.LogError("journal_full_reject", fmt.Errorf("size=%d limit=%d", stats.SizeBytes, rt.policy.MaxJournalSizeBytes))
			return false
		}
	}
}

func (rt *Runtime) enqueueWithPolicy(id ports.EntryID, e *domain.Event) bool {
	sleep := rt.policy.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		if rt.queue.Enqueue(id, e) {
			return true
		}
		switch rt.policy.OnQueueFull {
		case "block":
			time.Sleep(sleep)
		default:
			rt.obs.LogError("queue_full_drop", fmt.Errorf("queue length exceeded capacity %d", rt.policy.MaxQueueLen))
			return false
		}
	}
}

// Start launches the archive pipeline, metrics endpoint, and HTTP API. It
// returns immediately; call Run to block on a context instead.
func (rt *Runtime) Start() error {
	if rt == nil {
		return fmt.Errorf("runtime is nil")
	}

	rt.archiveStopCh = make(chan struct{})
	rt.archiveDoneCh = make(chan struct{})
	go func() {
		pipeline.RunArchivePipeline(rt.journal, rt.queue, rt.archiver, rt.policy, rt.obs, rt.archiveStopCh)
		close(rt.archiveDoneCh)
	}()

	rt.startMetrics()
	rt.startAPI()
	return nil
}

// Run starts the runtime and blocks until the provided context is cancelled,
// then attempts a graceful shutdown.
func (rt *Runtime) Run(ctx context.Context) error {
	if err := rt.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return rt.Shutdown(shutdownCtx)
}

// Shutdown stops the HTTP servers and the archive pipeline, then releases
// the archive connection and the journal.
func (rt *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if rt.gaugeStopCh != nil {
		close(rt.gaugeStopCh)
		rt.gaugeStopCh = nil
	}

	for _, srv := range []*http.Server{rt.apiSrv, rt.metricsSrv} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	if rt.archiveStopCh != nil {
		close(rt.archiveStopCh)
		rt.archiveStopCh = nil
		select {
		case <-rt.archiveDoneCh:
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
		}
	}

	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if closer, ok := rt.journal.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (rt *Runtime) startAPI() {
	rt.apiSrv = &http.Server{
		Addr:    rt.cfg.API.Addr,
		Handler: NewAPIRouter(rt.reg, rt.cfg.PrincipalTable(), rt.obs),
	}
	go func() {
		if err := rt.apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.obs.LogCritical("api_server_exited", err)
		}
	}()
}

func (rt *Runtime) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	rt.metricsSrv = &http.Server{
		Addr:    rt.cfg.Metrics.Addr,
		Handler: mux,
	}
	go func() {
		if err := rt.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.obs.LogError("metrics_server_exited", err)
		}
	}()

	rt.gaugeStopCh = make(chan struct{})
	go rt.recordGauges(rt.gaugeStopCh, time.Second)
}

func (rt *Runtime) recordGauges(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			stats := rt.journal.Stats()
			rt.obs.SetGauge(observability.MetricJournalSizeBytes, float64(stats.SizeBytes))
			rt.obs.SetGauge(observability.MetricQueueLength, float64(rt.queue.Len()))
			rt.obs.SetGauge(observability.MetricPendingRequests, float64(rt.reg.PendingCount()))
		}
	}
}
