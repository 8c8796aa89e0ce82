package storage

import (
	"context"
	"fmt"
	"path/filepath"
)

// Driver names a Store backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverBolt       Driver = "bolt"
	DriverDuckDB     Driver = "duckdb"
	DriverSQLite     Driver = "sqlite"
	DriverRedis      Driver = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Driver Driver
	// Dir holds the filesystem store and the default database files.
	Dir string
	// Path overrides the database file of the bolt, duckdb and sqlite drivers.
	Path  string
	Redis RedisOptions
}

// Open returns the Store named by opts.Driver (default fs).
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.Dir == "" {
		opts.Dir = "./data/plans"
	}
	file := func(name string) string {
		if opts.Path != "" {
			return opts.Path
		}
		return filepath.Join(opts.Dir, name)
	}

	switch opts.Driver {
	case "", DriverFilesystem:
		return NewLocalStore(opts.Dir)
	case DriverBolt:
		return NewBoltStore(file("plans.bolt"))
	case DriverDuckDB:
		return NewDuckStore(file("plans.duckdb"))
	case DriverSQLite:
		return NewSQLiteStore(file("plans.sqlite"))
	case DriverRedis:
		return NewRedisStore(ctx, opts.Redis)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
