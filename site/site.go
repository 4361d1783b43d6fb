// Package site keeps the per-site tables: local configuration values and the
// web service response cache. Each site owns its own pair of tables, named
// after the site ID.
package site

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-cached-table/record"
	"github.com/goliatone/go-cached-table/table"
)

// Table name suffixes appended to the site ID.
const (
	ConfigTableSuffix  = "_config"
	WsCacheTableSuffix = "_wscache"
)

// TableOpener opens a table for schema. Callers decide the strategy, store
// and cache the table is backed by.
type TableOpener func(ctx context.Context, schema record.Schema) (table.Table, error)

// OpenWith returns a TableOpener that calls table.Open with opts.
func OpenWith(opts table.Options) TableOpener {
	return func(ctx context.Context, schema record.Schema) (table.Table, error) {
		return table.Open(ctx, schema, opts)
	}
}

// Options configures New.
type Options struct {
	ID     string
	URL    string
	Opener TableOpener
	Logger *slog.Logger
}

// Site is a handle on one site's tables.
type Site struct {
	id      string
	url     string
	config  table.Table
	wsCache table.Table
	logger  *slog.Logger
}

// CreateSiteID derives a stable site ID from the site URL and the user name.
func CreateSiteID(siteURL, username string) string {
	id := uuid.NewMD5(uuid.NameSpaceURL, []byte(siteURL+username))
	return strings.ReplaceAll(id.String(), "-", "")
}

// ConfigSchema is the schema of the local configuration table of site id.
func ConfigSchema(id string) record.Schema {
	return record.Schema{
		Table:      id + ConfigTableSuffix,
		PrimaryKey: []string{"name"},
		Fields: []record.Field{
			{Name: "name", Kind: record.KindString},
			{Name: "value", Kind: record.KindAny, Nullable: true},
		},
	}
}

// WsCacheSchema is the schema of the web service cache table of site id.
func WsCacheSchema(id string) record.Schema {
	return record.Schema{
		Table:      id + WsCacheTableSuffix,
		PrimaryKey: []string{"id"},
		Fields: []record.Field{
			{Name: "id", Kind: record.KindString},
			{Name: "data", Kind: record.KindString, Nullable: true},
			{Name: "key", Kind: record.KindString, Nullable: true},
			{Name: "component", Kind: record.KindString, Nullable: true},
			{Name: "componentId", Kind: record.KindInteger, Nullable: true},
			{Name: table.ExpirationField, Kind: record.KindInteger, Default: int64(0)},
		},
	}
}

// New opens the tables of a site.
func New(ctx context.Context, opts Options) (*Site, error) {
	if opts.ID == "" {
		return nil, goerrors.New("site id is required", goerrors.CategoryValidation)
	}
	if opts.Opener == nil {
		return nil, goerrors.New("site "+opts.ID+": table opener is required", goerrors.CategoryValidation)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	config, err := opts.Opener(ctx, ConfigSchema(opts.ID))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "cannot open config table for site "+opts.ID)
	}
	wsCache, err := opts.Opener(ctx, WsCacheSchema(opts.ID))
	if err != nil {
		_ = config.Close(ctx)
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "cannot open ws cache table for site "+opts.ID)
	}

	s := &Site{
		id:      opts.ID,
		url:     opts.URL,
		config:  config,
		wsCache: wsCache,
		logger:  opts.Logger.With("site", opts.ID),
	}
	s.logger.DebugContext(ctx, "site opened", "url", opts.URL, "strategy", config.Strategy().String())
	return s, nil
}

func (s *Site) ID() string { return s.id }

func (s *Site) URL() string { return s.url }

// ConfigTable returns the local configuration table.
func (s *Site) ConfigTable() table.Table { return s.config }

// WsCacheTable returns the web service cache table.
func (s *Site) WsCacheTable() table.Table { return s.wsCache }

// SetLocalConfig stores value under name, inserting a new row or updating the
// existing one.
func (s *Site) SetLocalConfig(ctx context.Context, name string, value any) error {
	err := s.config.Insert(ctx, record.Row{"name": name, "value": value})
	if !record.IsDuplicateKey(err) {
		return err
	}
	return s.config.Update(ctx, record.Row{"value": value}, record.Filter{"name": name})
}

// GetLocalConfig returns the value stored under name. A missing name is a
// RecordNotFound error.
func (s *Site) GetLocalConfig(ctx context.Context, name string) (any, error) {
	row, err := s.config.GetOneByPrimaryKey(ctx, record.Key{"name": name})
	if err != nil {
		return nil, err
	}
	return row["value"], nil
}

// GetLocalConfigOr returns def when name is not stored. Other failures are
// returned as is.
func (s *Site) GetLocalConfigOr(ctx context.Context, name string, def any) (any, error) {
	value, err := s.GetLocalConfig(ctx, name)
	if record.IsRecordNotFound(err) {
		return def, nil
	}
	return value, err
}

// DeleteConfig removes the value stored under name.
func (s *Site) DeleteConfig(ctx context.Context, name string) error {
	return s.config.DeleteByPrimaryKey(ctx, record.Key{"name": name})
}

// InvalidateWsCache marks every cached web service response as expired. The
// entries are kept so they can still be served when offline.
func (s *Site) InvalidateWsCache(ctx context.Context) error {
	if err := table.InvalidateExpiration(ctx, s.wsCache, nil); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "ws cache invalidated")
	return nil
}

// Close closes both site tables.
func (s *Site) Close(ctx context.Context) error {
	return errors.Join(s.config.Close(ctx), s.wsCache.Close(ctx))
}
