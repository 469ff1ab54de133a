package store

import "log/slog"

const (
	defaultTableName   = "valnk-content"
	defaultPageSize    = 30
	defaultMaxPageSize = 1000

	// maxPageSizeCeiling bounds MaxPageSize so limit+1 cannot overflow int32.
	maxPageSizeCeiling = 10_000
)

// Config holds configuration for the Store.
type Config struct {
	// TableName is the single table holding every entity kind.
	// Default: "valnk-content"
	TableName string

	// PageSize is the number of items a list returns when no limit is given.
	// Default: 30
	PageSize int32

	// MaxPageSize is the largest limit a caller may request.
	// Default: 1000, capped at 10000
	MaxPageSize int32

	// Logger receives storage failures and unknown errors.
	// Default: slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TableName:   defaultTableName,
		PageSize:    defaultPageSize,
		MaxPageSize: defaultMaxPageSize,
		Logger:      slog.Default(),
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.TableName == "" {
		c.TableName = defaultTableName
	}
	if c.MaxPageSize < 1 {
		c.MaxPageSize = defaultMaxPageSize
	}
	if c.MaxPageSize > maxPageSizeCeiling {
		c.MaxPageSize = maxPageSizeCeiling
	}
	if c.PageSize < 1 {
		c.PageSize = defaultPageSize
	}
	if c.PageSize > c.MaxPageSize {
		c.PageSize = c.MaxPageSize
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
