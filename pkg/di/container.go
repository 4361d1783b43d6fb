package di

import (
	"context"
	"log/slog"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cached-table/cache"
	"github.com/goliatone/go-cached-table/config"
	"github.com/goliatone/go-cached-table/internal/metrics"
	"github.com/goliatone/go-cached-table/record"
	"github.com/goliatone/go-cached-table/site"
	"github.com/goliatone/go-cached-table/store"
	"github.com/goliatone/go-cached-table/store/bunstore"
	"github.com/goliatone/go-cached-table/store/memstore"
	"github.com/goliatone/go-cached-table/table"
)

// Container provides dependency injection for cached tables.
// It owns the record store adapter, the row caches, the key serializer and
// the metrics collector shared by every table it opens.
type Container struct {
	config        config.Config
	adapter       store.Adapter
	ownsAdapter   bool
	rows          *table.RowCachePool
	keySerializer cache.KeySerializer
	metrics       *metrics.Collector
	logger        *slog.Logger
}

// Option customises a Container.
type Option func(*Container)

// WithLogger sets the logger handed to every table.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// WithAdapter uses adapter instead of opening the store named in the
// configuration. The container does not close it.
func WithAdapter(adapter store.Adapter) Option {
	return func(c *Container) {
		c.adapter = adapter
	}
}

// NewContainer creates a new DI container from cfg. The configured store is
// opened unless WithAdapter supplies one.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		config:        cfg,
		keySerializer: cache.NewDefaultKeySerializer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	rows, err := table.NewRowCachePool(cfg.Cache)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "cannot create row cache")
	}
	c.rows = rows

	if cfg.Metrics.Enabled {
		collector, err := metrics.NewCollector(metrics.Config{Namespace: cfg.Metrics.Namespace})
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "cannot create metrics collector")
		}
		c.metrics = collector
	}

	if c.adapter == nil && cfg.Strategy().Durable() {
		adapter, err := openAdapter(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
		c.adapter = adapter
		c.ownsAdapter = true
	}

	c.logger.DebugContext(ctx, "container ready", "config", cfg.String())
	return c, nil
}

// NewContainerWithDefaults creates a new DI container using config.Default.
func NewContainerWithDefaults(ctx context.Context, opts ...Option) (*Container, error) {
	return NewContainer(ctx, config.Default(), opts...)
}

func openAdapter(ctx context.Context, cfg config.StoreConfig) (store.Adapter, error) {
	if cfg.Driver == config.DriverMemory {
		return memstore.New(), nil
	}
	adapter, err := bunstore.Open(ctx, bunstore.Options{Driver: cfg.Driver, DSN: cfg.DSN})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "cannot open "+cfg.Driver+" store")
	}
	return adapter, nil
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() config.Config {
	return c.config
}

// Adapter returns the shared record store adapter. It is nil when the
// configured strategy never touches a store.
func (c *Container) Adapter() store.Adapter {
	return c.adapter
}

func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Metrics returns the collector, or nil when metrics are disabled.
func (c *Container) Metrics() *metrics.Collector {
	return c.metrics
}

func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// TableOptions returns the options every table opened by the container uses.
func (c *Container) TableOptions() table.Options {
	opts := table.Options{
		Strategy:      c.config.Strategy(),
		Adapter:       c.adapter,
		CacheConfig:   c.config.Cache,
		RowCache:      c.rows.Factory(),
		KeySerializer: c.keySerializer,
		Logger:        c.logger,
	}
	if c.metrics != nil {
		opts.Observer = c.metrics
	}
	return opts
}

// OpenTable opens a table for schema with the container's settings.
func (c *Container) OpenTable(ctx context.Context, schema record.Schema) (*table.Proxy, error) {
	return table.Open(ctx, schema, c.TableOptions())
}

// TableOpener adapts OpenTable for site.Options.
func (c *Container) TableOpener() site.TableOpener {
	return func(ctx context.Context, schema record.Schema) (table.Table, error) {
		return c.OpenTable(ctx, schema)
	}
}

// OpenSite opens the tables of the site identified by siteURL and username.
func (c *Container) OpenSite(ctx context.Context, siteURL, username string) (*site.Site, error) {
	return site.New(ctx, site.Options{
		ID:     site.CreateSiteID(siteURL, username),
		URL:    siteURL,
		Opener: c.TableOpener(),
		Logger: c.logger,
	})
}

// RowCache returns the row caches shared by every table the container opens.
func (c *Container) RowCache() *table.RowCachePool {
	return c.rows
}

// Close drops every cached row and releases the adapter when the container
// opened it.
func (c *Container) Close() error {
	c.logger.Debug("closing container", "cached_rows", c.rows.Len())
	if err := c.rows.Clear(context.Background()); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "cannot clear row cache")
	}
	if c.ownsAdapter && c.adapter != nil {
		return c.adapter.Close()
	}
	return nil
}
