package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/warden/pkg/config"
)

// Pruner enforces the retention policy on stored records.
type Pruner struct {
	storage Storage
	config  config.RetentionConfig
	logger  *slog.Logger
	now     func() time.Time
}

// NewPruner creates a retention pruner.
func NewPruner(storage Storage, cfg config.RetentionConfig, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		storage: storage,
		config:  cfg,
		logger:  logger.With("component", "history.retention"),
		now:     time.Now,
	}
}

// Prune deletes records older than the retention period, then the oldest
// records beyond MaxRecords. It returns the total number deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.Days > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
	}

	if totalDeleted == 0 {
		p.logger.Debug("no records pruned",
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Info("history pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

// pruneByAge deletes records started before the cutoff.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.Days)
	// Until is inclusive; step back so a record exactly at the cutoff stays.
	until := cutoff.Add(-time.Nanosecond)

	deleted, err := p.storage.Delete(ctx, &Query{Until: &until})
	if err != nil {
		return 0, err
	}

	p.logger.Debug("pruned records by age",
		"deleted_count", deleted,
		"cutoff_time", cutoff,
	)
	return deleted, nil
}

// pruneByCount deletes the oldest records beyond MaxRecords.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}

	limit := int64(p.config.MaxRecords)
	if count <= limit {
		return 0, nil
	}
	excess := count - limit

	oldest, err := p.storage.Query(ctx, &Query{Ascending: true, Limit: int(excess)})
	if err != nil {
		return 0, fmt.Errorf("failed to query records: %w", err)
	}

	var deleted int64
	for _, record := range oldest {
		n, err := p.storage.Delete(ctx, &Query{ID: record.ID})
		if err != nil {
			return deleted, fmt.Errorf("delete failed: %w", err)
		}
		deleted += n
	}

	p.logger.Debug("pruned records by count",
		"deleted_count", deleted,
		"max_records", p.config.MaxRecords,
	)
	return deleted, nil
}
