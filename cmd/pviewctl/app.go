package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"

	"github.com/vnykmshr/pviewgroups/internal/appconfig"
	"github.com/vnykmshr/pviewgroups/internal/currency"
	"github.com/vnykmshr/pviewgroups/internal/eav/sqlite"
	"github.com/vnykmshr/pviewgroups/internal/scopeconfig"
	"github.com/vnykmshr/pviewgroups/pkg/catalog"
	"github.com/vnykmshr/pviewgroups/pkg/compression"
	"github.com/vnykmshr/pviewgroups/pkg/metrics"
	"github.com/vnykmshr/pviewgroups/pkg/pview"
	"github.com/vnykmshr/pviewgroups/pkg/tagcache"
)

// app holds the wired components shared by the subcommands.
type app struct {
	cfg      *appconfig.Config
	registry *prometheus.Registry
	exporter metrics.Exporter

	store     *sqlite.Store
	structure *tagcache.Cache
	page      *tagcache.Cache

	config   *pview.Config
	provider *pview.GroupProvider
	flusher  *pview.CacheFlusher
	writer   *pview.FlushingGroupWriter
	view     *pview.View
}

func newApp(ctx context.Context) (*app, error) {
	cfg, v, err := appconfig.Load(configPath)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)

	a := &app{cfg: cfg}
	if err := a.init(ctx, v); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context, v *viper.Viper) error {
	logger := slog.Default()

	exporter, err := a.newExporter()
	if err != nil {
		return fmt.Errorf("metrics exporter: %w", err)
	}
	a.exporter = exporter

	if a.structure, err = a.newCache("structure", a.cfg.Cache.MaxEntries); err != nil {
		return fmt.Errorf("structure cache: %w", err)
	}
	if a.page, err = a.newCache("page", a.cfg.Cache.PageMaxEntries); err != nil {
		return fmt.Errorf("page cache: %w", err)
	}

	dispatcher := catalog.NewDispatcher()
	if a.store, err = sqlite.Open(a.cfg.DB.Path, sqlite.WithDispatcher(dispatcher)); err != nil {
		return err
	}

	money, err := a.newCurrency(ctx, v)
	if err != nil {
		return err
	}

	a.config = pview.NewConfig(scopeconfig.New(v))
	a.flusher = pview.NewCacheFlusher(a.structure, a.page,
		pview.WithFlushMetrics(exporter),
		pview.WithFlushLogger(logger))
	helper := pview.NewFlushHelper(a.config, a.store, a.store)
	pview.RegisterObservers(dispatcher,
		pview.NewAttributeSetObserver(a.flusher, logger),
		pview.NewEntityAttributeObserver(a.flusher, helper, logger))

	a.provider, err = pview.NewGroupProvider(a.config, a.store, a.store,
		pview.NewAttributeValueResolver(catalog.DefaultRenderer{}, money),
		a.structure,
		pview.WithLogger(logger),
		pview.WithSortedDenylistKey(a.cfg.Cache.SortDenylistKey))
	if err != nil {
		return err
	}
	a.writer = pview.NewFlushingGroupWriter(a.store, a.store, a.flusher, helper, logger)
	a.view = pview.NewView(a.config, a.provider)
	return nil
}

func (a *app) newExporter() (metrics.Exporter, error) {
	mcfg := metrics.NewDefaultConfig().WithLabels(metrics.Labels{"service": "pviewctl"})
	switch a.cfg.Metrics.Exporter {
	case "prometheus":
		a.registry = prometheus.NewRegistry()
		return metrics.NewPrometheusExporter(mcfg, &metrics.PrometheusConfig{Registry: a.registry})
	case "otel":
		return metrics.NewOpenTelemetryExporter(mcfg, &metrics.OpenTelemetryConfig{
			Meter: otel.Meter("github.com/vnykmshr/pviewgroups"),
		})
	default:
		return metrics.NewNoOpExporter(), nil
	}
}

func (a *app) newCache(name string, maxEntries int) (*tagcache.Cache, error) {
	var config *tagcache.Config
	switch a.cfg.Cache.Backend {
	case "redis":
		config = tagcache.NewDefaultConfig().WithRedis(&tagcache.RedisConfig{
			Addr:      a.cfg.Redis.Addr,
			Password:  a.cfg.Redis.Password,
			DB:        a.cfg.Redis.DB,
			KeyPrefix: a.cfg.Redis.KeyPrefix + name + ":",
		})
	default:
		config = tagcache.NewDefaultConfig().
			WithMaxEntries(maxEntries).
			WithCleanupInterval(a.cfg.Cache.CleanupInterval)
	}

	logger := tagcache.NewSlogLogger(slog.Default().With("cache", name))
	config.WithDefaultTTL(pview.CacheLifetime).
		WithLogger(logger).
		WithHooks(config.Hooks.Merge(cacheHooks(logger, a.cfg.LogLevel() <= slog.LevelDebug)))

	if a.cfg.Cache.Compression != "" && a.cfg.Cache.Compression != string(compression.CompressorNone) {
		config.WithCompression(compression.NewDefaultConfig().
			WithEnabled(true).
			WithAlgorithm(compression.CompressorType(a.cfg.Cache.Compression)).
			WithMinSize(a.cfg.Cache.CompressMinSize))
	}

	if _, ok := a.exporter.(*metrics.NoOpExporter); !ok {
		config.WithMetrics(&tagcache.MetricsConfig{
			Exporter:          a.exporter,
			Enabled:           true,
			CacheName:         name,
			ReportingInterval: a.cfg.Metrics.ReportInterval,
		})
	}
	return tagcache.New(config)
}

// cacheHooks logs misses, evictions and tag cleans. At debug level hits and
// per-key invalidations are logged too.
func cacheHooks(logger tagcache.Logger, debug bool) *tagcache.Hooks {
	logCfg := tagcache.NewDefaultLoggingConfig(logger)
	logCfg.LogCacheHits = debug
	logCfg.LogInvalidations = debug
	return tagcache.CreateLoggingHooks(logCfg)
}

// newCurrency builds the price formatter. Stores may override the default
// with stores.<id>.currency.code and stores.<id>.currency.locale.
func (a *app) newCurrency(ctx context.Context, v *viper.Viper) (*currency.Formatter, error) {
	money, err := currency.New(a.cfg.Currency.Code, a.cfg.Currency.Locale)
	if err != nil {
		return nil, fmt.Errorf("currency: %w", err)
	}
	stores, err := a.store.Stores(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range stores {
		key := "stores." + strconv.Itoa(st.ID) + ".currency"
		if !v.IsSet(key + ".code") {
			continue
		}
		locale := v.GetString(key + ".locale")
		if locale == "" {
			locale = a.cfg.Currency.Locale
		}
		if err := money.SetStore(st.ID, v.GetString(key+".code"), locale); err != nil {
			return nil, fmt.Errorf("currency: %w", err)
		}
	}
	return money, nil
}

// Close releases the store, the caches and the exporter.
func (a *app) Close() {
	var errs []error
	if a.page != nil {
		errs = append(errs, a.page.Close())
	}
	if a.structure != nil {
		errs = append(errs, a.structure.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.exporter != nil {
		errs = append(errs, a.exporter.Close())
	}
	if err := errors.Join(errs...); err != nil {
		slog.Warn("shutdown", slog.Any("error", err))
	}
}
