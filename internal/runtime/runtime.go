package runtime

import (
	"context"
	"errors"
	"time"

	cfgpkg "github.com/rzbill/vesta/internal/config"
	"github.com/rzbill/vesta/internal/eventlog"
	"github.com/rzbill/vesta/internal/ledger"
	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
}

// Runtime wires storage, config, the ledger store, and the emitted-record
// log for a single-node instance.
type Runtime struct {
	db     *pebblestore.DB
	config cfgpkg.Config
	store  *ledger.Store
	events *eventlog.Log
}

// Open initializes the underlying storage and returns a Runtime. The ledger
// controller is created on first open with the configured initial claim fee.
func Open(opts Options) (*Runtime, error) {
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
	})
	if err != nil {
		return nil, err
	}
	store, err := ledger.OpenStore(db, opts.Config.InitialClaimFee)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	events, err := eventlog.OpenLog(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Runtime{db: db, config: opts.Config, store: store, events: events}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	it.Close()
	return nil
}

// Ledger returns the ledger store.
func (r *Runtime) Ledger() *ledger.Store { return r.store }

// Events returns the emitted-record log.
func (r *Runtime) Events() *eventlog.Log { return r.events }

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
