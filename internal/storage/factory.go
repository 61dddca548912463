package storage

import (
	"fmt"
	"log/slog"

	"github.com/OCAP2/hunter/internal/config"
	"github.com/OCAP2/hunter/internal/database"
	gormstorage "github.com/OCAP2/hunter/internal/storage/gorm"
	influxstorage "github.com/OCAP2/hunter/internal/storage/influx"
	"github.com/OCAP2/hunter/internal/storage/memory"
)

// Types lists the accepted storage.type values.
var Types = []string{"memory", "sqlite", "postgres", "influx"}

// NewBackend creates a journal backend based on configuration. The backend
// still needs Init.
func NewBackend(cfg config.StorageConfig, log *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case "", "memory":
		return memory.New(cfg.Memory), nil
	case "sqlite":
		db, err := database.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite journal: %w", err)
		}
		return gormstorage.New(db), nil
	case "postgres":
		db, err := database.OpenPostgres(cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return gormstorage.New(db), nil
	case "influx":
		return influxstorage.New(cfg.Influx, log), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
