package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	metrics "github.com/goliatone/go-metrics-admin/components/metrics"
	"github.com/goliatone/go-metrics-admin/components/metrics/commands"
	"github.com/goliatone/go-metrics-admin/components/metrics/gorouter"
	"github.com/goliatone/go-metrics-admin/components/metrics/httpapi"
	"github.com/goliatone/go-metrics-admin/components/session"
	"github.com/goliatone/go-metrics-admin/pkg/config"
	"github.com/goliatone/go-metrics-admin/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	telemetry := logging.NewTelemetry(logger)

	sessions := session.NewManager(session.Options{
		Secret:   cfg.Session.Secret,
		TokenTTL: cfg.Session.TokenTTL,
		Store:    tokenStore(cfg.Session.StorePath),
	})

	source, err := buildSource(cfg.Dataset)
	if err != nil {
		logger.Fatal("configure dataset source", zap.Error(err))
	}

	registry, err := buildRegistry(cfg.Charts, logger)
	if err != nil {
		logger.Fatal("configure chart registry", zap.Error(err))
	}

	hook := metrics.NewBroadcastHook()

	service := metrics.NewService(metrics.Options{
		Source:      source,
		Charts:      registry,
		RefreshHook: hook,
		Telemetry:   telemetry,
	})

	controller := metrics.NewController(metrics.ControllerOptions{
		Service: service,
	})

	executor := &httpapi.CommandExecutor{
		ExportCommander:  commands.NewExportCSVCommand(service, telemetry),
		SyncCommander:    commands.NewSyncDatabaseCommand(service, telemetry),
		HardenCommander:  commands.NewHardenSecurityCommand(service, telemetry),
		RefreshCommander: commands.NewRefreshDatasetCommand(service, telemetry),
		FilterCommander:  commands.NewSaveFilterCommand(service, telemetry),
	}

	server := router.NewFiberAdapter()
	appRouter := server.Router()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     appRouter,
		Controller: controller,
		Sessions:   sessions,
		API:        executor,
		Broadcast:  hook,
		BasePath:   cfg.HTTP.BasePath,
	}); err != nil {
		logger.Fatal("register routes", zap.Error(err))
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	logger.Info("metrics admin ready",
		zap.String("dashboard", fmt.Sprintf("http://localhost%s%s/dashboard", addr, cfg.HTTP.BasePath)),
		zap.String("login", fmt.Sprintf("POST %s/login", cfg.HTTP.BasePath)),
	)
	if err := server.Serve(addr); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func tokenStore(path string) session.TokenStore {
	if path == "" {
		return nil
	}
	return session.NewFileTokenStore(path)
}

func buildSource(cfg config.DatasetConfig) (metrics.Source, error) {
	switch {
	case cfg.SourceURL != "":
		return metrics.NewHTTPSource(metrics.HTTPSourceConfig{
			BaseURL: cfg.SourceURL,
			APIKey:  cfg.SourceKey,
		})
	case cfg.Path != "":
		return metrics.NewFileSource(cfg.Path)
	default:
		source := metrics.NewDemoSource()
		if cfg.Delay > 0 {
			source.Delay = cfg.Delay
		}
		return source, nil
	}
}

// buildRegistry applies the chart overrides from configuration. The
// built-in providers registered by the package hooks use default theme
// and cache settings, so any override re-registers them.
func buildRegistry(cfg config.ChartsConfig, logger *zap.Logger) (*metrics.Registry, error) {
	registry := metrics.NewRegistry()

	if cfg.ManifestPath != "" {
		doc, err := registry.LoadManifestFile(cfg.ManifestPath)
		if err != nil {
			return nil, err
		}
		logger.Info("chart manifest loaded",
			zap.String("path", cfg.ManifestPath),
			zap.Int("charts", len(doc.Charts)),
		)
	}

	if cfg.Theme == "" && cfg.AssetsHost == "" && cfg.CacheTTL <= 0 {
		return registry, nil
	}

	var opts []metrics.EChartsProviderOption
	if cfg.CacheTTL > 0 {
		opts = append(opts, metrics.WithChartCache(metrics.NewChartCache(cfg.CacheTTL)))
	}
	if cfg.Theme != "" {
		opts = append(opts, metrics.WithChartTheme(cfg.Theme))
	}
	if cfg.AssetsHost != "" {
		opts = append(opts, metrics.WithChartAssetsHost(cfg.AssetsHost))
	}

	kinds := map[string]string{
		metrics.ChartUsersTrend:   "line",
		metrics.ChartRevenueByDay: "bar",
		metrics.ChartRegionShare:  "pie",
	}
	for code, kind := range kinds {
		if _, ok := registry.Definition(code); !ok {
			continue
		}
		if err := registry.RegisterProvider(code, metrics.NewEChartsProvider(kind, opts...)); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
