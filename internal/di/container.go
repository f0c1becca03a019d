// Package di provides dependency injection configuration for the promptdeck core.
package di

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/promptdeck/promptdeck/internal/app"
	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/domain"
	"github.com/promptdeck/promptdeck/internal/ingest"
	"github.com/promptdeck/promptdeck/internal/logger"
	"github.com/promptdeck/promptdeck/internal/persist"
	"github.com/promptdeck/promptdeck/internal/search"
	"github.com/promptdeck/promptdeck/internal/storage"
)

// NewContainer creates and configures the DI container with all providers.
// Flags after the program name are forwarded to config loading.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	do.Provide(injector, func(do.Injector) (*config.Config, error) {
		return config.LoadConfig(args)
	})
	do.Provide(injector, ProvideLogger)
	do.Provide(injector, ProvideBackend)
	do.Provide(injector, ProvideState)
	do.Provide(injector, ProvideManager)
	do.Provide(injector, ProvideIndex)
	do.Provide(injector, ProvidePipeline)
	do.Provide(injector, ProvideApp)

	return injector
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("starting promptdeck",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_dir", cfg.Storage.DataDir,
	)
	return log, nil
}

// ProvideBackend selects the storage backend by capability probe (or the
// configured override).
func ProvideBackend(i do.Injector) (storage.Backend, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Storage.DataDir, 0755); err != nil {
		return nil, err
	}
	return storage.Select(storage.Kind(cfg.Storage.Backend), cfg.Storage.DataDir, log.Logger)
}

// ProvideState provides the empty working set; the caller loads it.
func ProvideState(do.Injector) (*domain.AppState, error) {
	return domain.NewAppState(), nil
}

// ProvideManager provides the persistence manager.
func ProvideManager(i do.Injector) (*persist.Manager, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	backend := do.MustInvoke[storage.Backend](i)
	state := do.MustInvoke[*domain.AppState](i)

	return persist.NewManager(persist.Options{
		Backend:        backend,
		State:          state,
		Logger:         log.Logger,
		Notifier:       LogNotifier{Logger: log},
		ThrottleWindow: cfg.Persist.ThrottleWindow,
	}), nil
}

// ProvideIndex provides the tag search index.
func ProvideIndex(i do.Injector) (*search.Index, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return search.New(search.Options{
		Logger:        log.Logger,
		DisableWorker: cfg.Search.DisableWorker,
	}), nil
}

// ProvidePipeline provides the image ingest pipeline.
func ProvidePipeline(i do.Injector) (*ingest.Pipeline, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return ingest.NewPipeline(ingest.Config{
		MaxWidth:    cfg.Ingest.MaxWidth,
		JPEGQuality: cfg.Ingest.JPEGQuality,
		Concurrency: cfg.Ingest.Concurrency,
	}, log.Logger), nil
}

// ProvideApp provides the application aggregate.
func ProvideApp(i do.Injector) (*app.App, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return app.New(app.Options{
		State:          do.MustInvoke[*domain.AppState](i),
		Persist:        do.MustInvoke[*persist.Manager](i),
		Index:          do.MustInvoke[*search.Index](i),
		Pipeline:       do.MustInvoke[*ingest.Pipeline](i),
		Logger:         log.Logger,
		Notifier:       LogNotifier{Logger: log},
		GalleryInitial: cfg.Gallery.InitialWindow,
		GalleryBatch:   cfg.Gallery.BatchSize,
	}), nil
}

// LogNotifier surfaces user-facing notifications through the logger. A real
// UI would replace this with toasts.
type LogNotifier struct {
	Logger *logger.Logger
}

// Info implements persist.Notifier.
func (n LogNotifier) Info(msg string) { n.Logger.Info(msg) }

// Warn implements persist.Notifier.
func (n LogNotifier) Warn(msg string) { n.Logger.Warn(msg) }

// Error implements persist.Notifier.
func (n LogNotifier) Error(msg string) { n.Logger.Error(msg) }
