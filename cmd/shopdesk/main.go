// Command shopdesk answers customer questions about a shop's catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/custodia-labs/shopdesk/internal/adapters/driven/ai"
	"github.com/custodia-labs/shopdesk/internal/adapters/driven/config/file"
	"github.com/custodia-labs/shopdesk/internal/adapters/driven/site/extract"
	"github.com/custodia-labs/shopdesk/internal/adapters/driven/site/web"
	"github.com/custodia-labs/shopdesk/internal/adapters/driven/storage/mongo"
	"github.com/custodia-labs/shopdesk/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/shopdesk/internal/adapters/driven/vectorindex/qdrant"
	"github.com/custodia-labs/shopdesk/internal/adapters/driving/cli"
	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
	"github.com/custodia-labs/shopdesk/internal/core/services"
	"github.com/custodia-labs/shopdesk/internal/logger"
	"github.com/custodia-labs/shopdesk/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, version, bootstrap)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// bootstrap loads configuration and wires adapters into the core services.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, func(), error) {
	dir := opts.ConfigDir
	if dir == "" {
		var err error
		if dir, err = file.DefaultConfigDir(); err != nil {
			return nil, nil, err
		}
	}

	if err := file.LoadDotEnv(".env", filepath.Join(dir, ".env")); err != nil {
		return nil, nil, fmt.Errorf("%w: loading .env: %w", domain.ErrConfig, err)
	}

	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrConfig, err)
	}
	configStore.ApplyEnvironment()

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, err
	}

	profile, err := file.ResolveSiteProfile(dir, settings.Site.ProfilePath)
	if err != nil {
		return nil, nil, err
	}
	if settings.Site.BaseURL != "" {
		profile.BaseURL = settings.Site.BaseURL
	}

	svcs := &cli.Services{
		Settings:    settingsService,
		SiteProfile: &profile,
	}
	if opts.SettingsOnly {
		return svcs, nil, nil
	}

	if err := settingsService.Validate(); err != nil {
		return nil, nil, err
	}
	if profile.BaseURL == "" {
		return nil, nil, fmt.Errorf("%w: site.base_url is not set", domain.ErrConfig)
	}

	var res resources
	if err := wire(ctx, dir, *settings, profile, svcs, &res); err != nil {
		res.close()
		return nil, nil, err
	}
	return svcs, res.close, nil
}

func wire(
	ctx context.Context,
	dir string,
	settings domain.AppSettings,
	profile domain.SiteProfile,
	svcs *cli.Services,
	res *resources,
) error {
	db, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		return err
	}
	res.add("sqlite", db.Close)

	aiServices, err := ai.Init(ctx, settings, false)
	if err != nil {
		return err
	}
	res.add("ai", func() error {
		aiServices.Close()
		return nil
	})

	catalog, err := openCatalog(ctx, settings.Storage, db)
	if err != nil {
		return err
	}
	res.add("catalog", catalog.Close)

	index, err := openIndex(settings.Index, db, aiServices.EmbeddingService)
	if err != nil {
		return err
	}
	res.add("index", index.Close)

	pipeline, err := postprocessors.DefaultPipeline(settings.Index.Pipeline)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfig, err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return err
	}

	client := web.NewClient(web.ConfigFrom(settings.Site, settings.Crawl))
	crawler := services.NewCrawler(client, profile, settings.Crawl)
	scraper := services.NewScraper(client, extract.New(), profile, settings.Scrape.Workers)
	syncer := services.NewIndexSynchronizer(index, pipeline)
	runs := db.SchedulerStore()
	refresh := services.NewRefreshService(crawler, scraper, catalog, syncer, runs)

	assembler := services.NewAnswerAssembler(aiServices.LLMService, profile.Company, services.AssemblerConfigFrom(settings))
	assembler.SetPromptStore(prompts)
	resolver := services.NewProductResolver(index, services.ResolverConfigFrom(settings))
	sessions := services.NewSessionStore(settings.Answer.HistoryMessages)
	assistant := services.NewAssistantService(index, catalog, resolver, assembler, sessions, profile, settings)
	refresh.OnComplete(assistant.Invalidate)

	svcs.Assistant = assistant
	svcs.Refresh = refresh
	svcs.Prompts = prompts
	svcs.NewScheduler = func(interval time.Duration) driving.Scheduler {
		cfg := domain.DefaultSchedulerConfig()
		cfg.TaskConfigs[domain.TaskIDCatalogRefresh] = domain.TaskConfig{Enabled: true, Interval: interval}
		return services.NewScheduler(cfg, runs, refresh)
	}
	return nil
}

func openCatalog(ctx context.Context, cfg domain.StorageSettings, db *sqlite.Store) (driven.CatalogStore, error) {
	switch cfg.Catalog {
	case domain.CatalogBackendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("%w: storage.mongo_uri is required for the mongo catalog", domain.ErrConfig)
		}
		return mongo.NewCatalogStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return db.CatalogStore(), nil
	}
}

func openIndex(cfg domain.IndexSettings, db *sqlite.Store, embedder driven.EmbeddingService) (driven.ChunkIndex, error) {
	switch cfg.Backend {
	case domain.IndexBackendQdrant:
		return qdrant.NewIndex(qdrant.Config{
			URL:        cfg.QdrantURL,
			APIKey:     os.Getenv(file.EnvQdrantAPIKey),
			Collection: cfg.QdrantCollection,
		}, embedder)
	default:
		if embedder == nil {
			logger.Debug("no embedding service, chunk search is lexical")
		}
		return db.ChunkIndex(embedder), nil
	}
}

// resources closes what bootstrap opened, last opened first.
type resources struct {
	names   []string
	closers []func() error
}

func (r *resources) add(name string, fn func() error) {
	r.names = append(r.names, name)
	r.closers = append(r.closers, fn)
}

func (r *resources) close() {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", r.names[i], err))
		}
	}
	r.names, r.closers = nil, nil
	if err := errors.Join(errs...); err != nil {
		logger.Warn("%v", err)
	}
}
