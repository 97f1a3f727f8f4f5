// Package pantry provides the public API for the single-file JSON store.
// It opens or creates the backing file and hands back a session bound to
// it, keeping the engine itself internal.
//
// Example:
//
//	db, err := pantry.Create[string]("test.db")
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	_ = db.CreateTable("test")
//	_, _ = db.Insert("test", "item #1")
package pantry

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mesh-intelligence/pantry/internal/jsonfile"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Version is the release of the pantry module.
const Version = "0.3.0"

// Option adjusts how a store is opened.
type Option func(*options)

type options struct {
	config types.Config
	logger *slog.Logger
}

// WithLogger routes engine log output to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithConfig sets the persistence parameters. DataFile and Mode are
// overridden by the opener.
func WithConfig(config types.Config) Option {
	return func(o *options) { o.config = config }
}

// Connect opens the store at path, creating an empty file when missing.
// Existing content is loaded and must be a valid store document.
func Connect[V any](path string, opts ...Option) (types.Pantry[V], error) {
	o := collect(opts)
	o.config.DataFile = path
	o.config.Mode = types.ModeConnect
	return open[V](o)
}

// Create opens the store at path, discarding any existing content.
func Create[V any](path string, opts ...Option) (types.Pantry[V], error) {
	o := collect(opts)
	o.config.DataFile = path
	o.config.Mode = types.ModeCreate
	return open[V](o)
}

// Open opens the store described by config, dispatching on config.Mode.
func Open[V any](config types.Config, opts ...Option) (types.Pantry[V], error) {
	o := collect(opts)
	o.config = config
	return open[V](o)
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func open[V any](o options) (types.Pantry[V], error) {
	if err := o.config.Validate(); err != nil {
		return nil, err
	}
	if o.config.DataFile == "" {
		return nil, types.ErrDataFileEmpty
	}

	flag := os.O_RDWR | os.O_CREATE
	if o.config.GetMode() == types.ModeCreate {
		flag |= os.O_TRUNC
	}
	f, err := os.OpenFile(o.config.DataFile, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStoreUnavailable, err)
	}

	s, err := jsonfile.Open[V](f, o.config, o.logger)
	if err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}
