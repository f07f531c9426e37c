package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"liquidity-radar/internal/alerting"
	"liquidity-radar/internal/config"
	"liquidity-radar/internal/fetcher"
	"liquidity-radar/internal/scheduler"
	"liquidity-radar/internal/service"
	"liquidity-radar/internal/storage"
	"liquidity-radar/internal/web"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetchers() (map[string]fetcher.VenueFetcher, error) {
	venues := a.Config.Monitor.Venues
	if len(venues) == 0 {
		return nil, errors.New("monitor.venues is empty; nothing to sample")
	}

	fetchers := make(map[string]fetcher.VenueFetcher, len(venues))
	for name, venue := range venues {
		fetchers[name] = fetcher.NewHTTP(fetcher.HTTPOptions{
			SampleURL: venue.SampleURL,
			Venue:     name,
			Symbol:    venue.Symbol,
			Timeout:   a.Config.Monitor.VenueTimeout,
			UserAgent: a.Config.Monitor.UserAgent,
		}, a.Logger)
	}
	return fetchers, nil
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Enabled && a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, errors.New("database.dsn is required")
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}

	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) newService(store *storage.Store, sched *scheduler.Scheduler) (*service.Service, error) {
	fetchers, err := a.newFetchers()
	if err != nil {
		return nil, err
	}

	deduper := alerting.NewDeduper(store, a.newNotifier(), a.Config.Monitor.DedupeWindow, a.Logger)
	return service.New(a.Config, sched, fetchers, store, deduper, a.Logger), nil
}

func (a *App) newWebServer(store *storage.Store) *web.Server {
	handler := web.NewHandler(store, store, store, store, a.Logger)
	return web.NewServer(a.Config.Web, handler, a.Logger)
}

// Run executes the long-running monitoring daemon: the collection loop and
// the read API side by side.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	svc, err := a.newService(store, sched)
	if err != nil {
		return err
	}
	server := a.newWebServer(store)

	a.Logger.Info().
		Int("venues", len(a.Config.Monitor.Venues)).
		Dur("interval", a.Config.Scheduler.Interval).
		Msg("starting monitoring daemon")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(gctx) })
	g.Go(func() error { return server.Run(gctx) })

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("daemon terminated with error")
		return err
	}

	a.Logger.Info().Msg("monitoring daemon stopped")
	return nil
}

// Once executes a single collection cycle and exits. Useful under external
// schedulers and for smoke-testing a new deployment.
func (a *App) Once(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := a.newService(store, nil)
	if err != nil {
		return err
	}

	bucket := time.Now().UTC().Truncate(a.Config.Scheduler.Interval)
	a.Logger.Info().Time("bucket", bucket).Msg("executing single collection cycle")
	return svc.ProcessCycle(ctx, bucket)
}

// Serve runs the read API only, against whatever state the collector has
// already persisted.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	server := a.newWebServer(store)
	err = server.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// ExportOptions hold parameters for exporting historical snapshots.
type ExportOptions struct {
	Venue     string
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	AlertLimit int
}

// SimulateOptions configure the simulate command.
type SimulateOptions struct {
	SamplePath string

	Check            bool
	SpreadBpsMedian  string
	DepthTotalMedian string
	ImpactMedian     string
	VolumeMean       string
}
