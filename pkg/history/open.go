package history

import (
	"fmt"
	"log/slog"

	"mercator-hq/warden/pkg/config"
)

// Open creates the storage backend named by cfg.Backend.
func Open(cfg *config.HistoryConfig, logger *slog.Logger) (Storage, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStorage(), nil
	case "sqlite", "":
		return NewSQLiteStorage(cfg.SQLite, logger)
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}
