package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"cuotas/internal/core"
)

// SnapshotStore is the persistence surface the snapshot processor needs
type SnapshotStore interface {
	ListChargeDocuments(ctx context.Context, condominiumID string, year int) ([]map[string]any, error)
	ListAccounts(ctx context.Context, condominiumID string) ([]core.Account, error)
	SaveSnapshots(ctx context.Context, condominiumID string, year int, stats []core.MonthlyStat) error
}

// SnapshotProcessorConfig holds configuration for the snapshot processor
type SnapshotProcessorConfig struct {
	// RefreshInterval is how often tracked scopes are rebuilt (default: 5m)
	RefreshInterval time.Duration
}

// DefaultSnapshotProcessorConfig returns sensible defaults
func DefaultSnapshotProcessorConfig() SnapshotProcessorConfig {
	return SnapshotProcessorConfig{
		RefreshInterval: 5 * time.Minute,
	}
}

type snapshotScope struct {
	condominiumID string
	year          int
}

// SnapshotProcessor rebuilds monthly snapshots from the charge ledger.
// Concurrent rebuilds of the same condominium and year collapse into one
// pass, and every scope ever rebuilt is refreshed periodically.
type SnapshotProcessor struct {
	store  SnapshotStore
	config SnapshotProcessorConfig
	group  singleflight.Group

	// Lifecycle management
	mu      sync.Mutex
	running bool
	tracked map[snapshotScope]struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSnapshotProcessor creates a new snapshot processor
func NewSnapshotProcessor(store SnapshotStore, config SnapshotProcessorConfig) *SnapshotProcessor {
	return &SnapshotProcessor{
		store:   store,
		config:  config,
		tracked: make(map[snapshotScope]struct{}),
	}
}

// Rebuild recomputes and persists the twelve monthly snapshots for a
// condominium and fiscal year
func (p *SnapshotProcessor) Rebuild(ctx context.Context, condominiumID string, year int) error {
	key := fmt.Sprintf("%s-%d", condominiumID, year)
	_, err, shared := p.group.Do(key, func() (any, error) {
		return nil, p.rebuild(ctx, condominiumID, year)
	})
	if err != nil {
		return err
	}

	if shared {
		slog.DebugContext(ctx, "Snapshot rebuild deduplicated",
			"condominium_id", condominiumID, "year", year)
	}

	p.mu.Lock()
	p.tracked[snapshotScope{condominiumID, year}] = struct{}{}
	p.mu.Unlock()

	return nil
}

func (p *SnapshotProcessor) rebuild(ctx context.Context, condominiumID string, year int) error {
	started := time.Now()

	docs, err := p.store.ListChargeDocuments(ctx, condominiumID, year)
	if err != nil {
		return fmt.Errorf("list charges: %w", err)
	}

	accounts, err := p.store.ListAccounts(ctx, condominiumID)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	recs := core.Normalize(docs, core.NormalizeOptions{Year: year})
	stats := core.AggregateByMonth(recs, core.AggregateOptions{Year: year})
	stats = core.ApplyOpeningBalances(stats, accounts)

	if err := p.store.SaveSnapshots(ctx, condominiumID, year, stats); err != nil {
		return fmt.Errorf("save snapshots: %w", err)
	}

	slog.InfoContext(ctx, "Rebuilt monthly snapshots",
		"condominium_id", condominiumID,
		"year", year,
		"record_count", len(recs),
		"duration_ms", time.Since(started).Milliseconds())

	return nil
}

// Start begins the periodic refresh loop. Returns an error if already running.
func (p *SnapshotProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("snapshot processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Snapshot processor started",
		"refresh_interval", p.config.RefreshInterval)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SnapshotProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Snapshot processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Snapshot processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *SnapshotProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SnapshotProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refreshTracked(ctx)
		}
	}
}

func (p *SnapshotProcessor) refreshTracked(ctx context.Context) {
	p.mu.Lock()
	scopes := make([]snapshotScope, 0, len(p.tracked))
	for scope := range p.tracked {
		scopes = append(scopes, scope)
	}
	p.mu.Unlock()

	for _, scope := range scopes {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := p.Rebuild(ctx, scope.condominiumID, scope.year); err != nil {
			slog.ErrorContext(ctx, "Periodic snapshot refresh failed",
				"condominium_id", scope.condominiumID,
				"year", scope.year,
				"error", err)
		}
	}
}
