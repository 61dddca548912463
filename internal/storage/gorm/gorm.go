// Package gormstorage implements storage.Backend on gorm, backed by sqlite or
// Postgres depending on the dialector the connection was opened with.
package gormstorage

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/OCAP2/hunter/internal/database"
	"github.com/OCAP2/hunter/internal/model"
	"github.com/OCAP2/hunter/internal/model/convert"
	"github.com/OCAP2/hunter/pkg/core"
)

// Backend writes journal rows through gorm.
type Backend struct {
	db *gorm.DB
}

// New creates a Backend on an open connection.
func New(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	return database.Close(b.db)
}

// Dialect names the sql dialect in use.
func (b *Backend) Dialect() string {
	return b.db.Dialector.Name()
}

// RecordTrapEvent inserts e and copies the generated ID back.
func (b *Backend) RecordTrapEvent(e *core.TrapEvent) error {
	row, err := convert.CoreToTrapEvent(*e)
	if err != nil {
		return fmt.Errorf("failed to encode details: %w", err)
	}
	row.ID = 0
	if err := b.db.Create(&row).Error; err != nil {
		return err
	}
	e.ID = row.ID
	return nil
}

// Summary counts rows per kind.
func (b *Backend) Summary() (core.EventSummary, error) {
	var rows []model.KindCount
	err := b.db.Model(&model.TrapEvent{}).
		Select("kind, count(*) as count").
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return core.EventSummary{}, err
	}

	s := core.EventSummary{ByKind: make(map[core.EventKind]int, len(rows))}
	for _, r := range rows {
		s.ByKind[core.EventKind(r.Kind)] = r.Count
		s.Total += r.Count
	}
	return s, nil
}

// Events returns the most recent events of a task, oldest first. limit <= 0
// returns all of them.
func (b *Backend) Events(task string, limit int) ([]core.TrapEvent, error) {
	var rows []model.TrapEvent
	q := b.db.Where("task = ?", task).Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]core.TrapEvent, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = convert.TrapEventToCore(r)
	}
	return out, nil
}
