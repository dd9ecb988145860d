// Package draftsync provides the main entry point for mirroring a
// local collection of markdown documents onto remote publishing
// platforms. It wires document discovery, content transformation, the
// platform connectors, and the reconciliation engine behind a single
// facade configured through functional options.
//
// Example usage:
//
//	ds, err := draftsync.New(
//	    draftsync.WithPlatforms("devto", "hashnode"),
//	    draftsync.WithPattern("blogs/*.md"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := ds.Sync(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(report)
//	if report.HasFailures() {
//	    os.Exit(1)
//	}
package draftsync

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/draftsync/draftsync/internal/platforms"
	"github.com/draftsync/draftsync/internal/scanner"
	"github.com/draftsync/draftsync/pkg/content"
	"github.com/draftsync/draftsync/pkg/logging"
	"github.com/draftsync/draftsync/pkg/posts"
	"github.com/draftsync/draftsync/pkg/reconcile"
)

// Report is the aggregated outcome of one reconciliation run.
type Report = reconcile.Report

// Draftsync reconciles local documents against remote platforms.
type Draftsync interface {
	// Sync runs a full reconciliation pass and returns the run report.
	// The error is non-nil only for configuration or scan problems;
	// per-document failures are carried inside the report.
	Sync(ctx context.Context) (*reconcile.Report, error)

	// Status computes the actions a sync would take without executing
	// any of them.
	Status(ctx context.Context) (*reconcile.Report, error)
}

// draftsync is the internal implementation of the Draftsync interface.
type draftsync struct {
	config      *config
	scanner     *scanner.Scanner
	engine      *reconcile.Engine
	clients     []posts.Client
	transformer posts.Transformer
	logger      *zerolog.Logger
}

// New creates a Draftsync instance with the given options.
func New(opts ...Option) (Draftsync, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = logging.Default()
	}

	clients := cfg.clients
	if clients == nil {
		var err error
		clients, err = platforms.NewAll(cfg.reconcile.Platforms, cfg.platforms)
		if err != nil {
			return nil, err
		}
	}

	transformer := cfg.transformer
	if transformer == nil {
		transformer = content.New()
	}

	engine, err := reconcile.NewEngine(cfg.reconcile, clients, transformer, logger)
	if err != nil {
		return nil, err
	}

	return &draftsync{
		config:      cfg,
		scanner:     scanner.New(cfg.scanner, logger),
		engine:      engine,
		clients:     clients,
		transformer: transformer,
		logger:      logger,
	}, nil
}

// Sync scans the local collection and reconciles every document
// against every enabled platform.
func (d *draftsync) Sync(ctx context.Context) (*reconcile.Report, error) {
	docs, err := d.scanner.Scan()
	if err != nil {
		return nil, err
	}
	return d.engine.Run(ctx, docs)
}

// Status is a dry sync: identical decisions, no remote writes.
func (d *draftsync) Status(ctx context.Context) (*reconcile.Report, error) {
	docs, err := d.scanner.Scan()
	if err != nil {
		return nil, err
	}

	dry := d.config.reconcile
	dry.DryRun = true
	engine, err := reconcile.NewEngine(dry, d.clients, d.transformer, d.logger)
	if err != nil {
		return nil, err
	}
	return engine.Run(ctx, docs)
}
