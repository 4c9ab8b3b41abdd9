package daemon

import (
	"context"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/1broseidon/halo/internal/desktop"
)

// EntrySource is a rescannable set of desktop entries.
type EntrySource interface {
	Refresh() error
	Entries() []desktop.Entry
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically rescans the installed applications and calls
// onChange when the set of entries differs from the previous scan.
type Reconciler struct {
	interval time.Duration
	source   EntrySource
	onChange func()
	logger   *slog.Logger

	fingerprint uint64
}

// NewReconciler creates a new reconciler with the given configuration.
// The current entries of source are taken as the baseline.
func NewReconciler(cfg ReconcilerConfig, source EntrySource, onChange func()) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:    interval,
		source:      source,
		onChange:    onChange,
		logger:      logger,
		fingerprint: fingerprint(source.Entries()),
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single rescan and reports whether entries changed.
func (r *Reconciler) reconcile() bool {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	if err := r.source.Refresh(); err != nil {
		r.logger.Error("reconciler: failed to scan desktop entries", "error", err)
		return false
	}
	entries := r.source.Entries()
	fp := fingerprint(entries)
	if fp == r.fingerprint {
		return false
	}
	r.fingerprint = fp

	r.logger.Info("reconciler: desktop entries changed", "count", len(entries))
	if r.onChange != nil {
		r.onChange()
	}
	return true
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() bool {
	return r.reconcile()
}

// fingerprint hashes the fields of entries that affect slot resolution.
// Entries arrive sorted by id, so equal sets hash equally.
func fingerprint(entries []desktop.Entry) uint64 {
	h := fnv.New64a()
	for _, e := range entries {
		for _, s := range []string{e.ID, e.Name, e.Class, e.Exec, e.Icon} {
			h.Write([]byte(s))
			h.Write([]byte{0})
		}
	}
	return h.Sum64()
}
