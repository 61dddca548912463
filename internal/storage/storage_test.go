// internal/storage/storage_test.go
package storage_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/hunter/internal/config"
	"github.com/OCAP2/hunter/internal/hunting"
	"github.com/OCAP2/hunter/internal/storage"
	gormstorage "github.com/OCAP2/hunter/internal/storage/gorm"
	influxstorage "github.com/OCAP2/hunter/internal/storage/influx"
	"github.com/OCAP2/hunter/internal/storage/memory"
	"github.com/OCAP2/hunter/pkg/core"
)

var (
	_ storage.Backend  = (*memory.Backend)(nil)
	_ storage.Backend  = (*gormstorage.Backend)(nil)
	_ storage.Backend  = (*influxstorage.Backend)(nil)
	_ hunting.Recorder = (*storage.Journal)(nil)
)

// flakyBackend fails every write while failing is set.
type flakyBackend struct {
	failing bool
	written []core.TrapEvent
	closed  bool
}

func (b *flakyBackend) Init() error { return nil }
func (b *flakyBackend) Close() error {
	b.closed = true
	return nil
}

func (b *flakyBackend) RecordTrapEvent(e *core.TrapEvent) error {
	if b.failing {
		return errors.New("connection reset")
	}
	e.ID = uint(len(b.written) + 1)
	b.written = append(b.written, *e)
	return nil
}

func (b *flakyBackend) Summary() (core.EventSummary, error) {
	return core.EventSummary{Total: len(b.written)}, nil
}

func TestJournal_FlushWritesInOrder(t *testing.T) {
	backend := &flakyBackend{}
	j := storage.NewJournal(backend, nil)

	j.Record(core.TrapEvent{Kind: core.EventPlaced})
	j.Record(core.TrapEvent{Kind: core.EventTriggered})
	assert.Equal(t, 2, j.Pending())
	assert.Empty(t, backend.written, "nothing written before Flush")

	require.NoError(t, j.Flush())
	assert.Equal(t, 0, j.Pending())
	require.Len(t, backend.written, 2)
	assert.Equal(t, core.EventPlaced, backend.written[0].Kind)
	assert.Equal(t, core.EventTriggered, backend.written[1].Kind)

	s, err := j.Summary()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Total)
}

func TestJournal_FailedFlushKeepsEvents(t *testing.T) {
	backend := &flakyBackend{failing: true}
	j := storage.NewJournal(backend, nil)

	j.Record(core.TrapEvent{Kind: core.EventPlaced})
	err := j.Flush()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "placed")
	assert.Equal(t, 1, j.Pending())

	j.Record(core.TrapEvent{Kind: core.EventCollected})
	backend.failing = false
	require.NoError(t, j.Flush())

	require.Len(t, backend.written, 2)
	assert.Equal(t, core.EventPlaced, backend.written[0].Kind, "requeued events go first")
}

func TestJournal_CloseFlushes(t *testing.T) {
	backend := &flakyBackend{}
	j := storage.NewJournal(backend, nil)
	j.Record(core.TrapEvent{Kind: core.EventMissing})

	require.NoError(t, j.Close())
	assert.Len(t, backend.written, 1)
	assert.True(t, backend.closed)
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		want    any
		wantErr bool
	}{
		{name: "default", cfg: config.StorageConfig{}, want: &memory.Backend{}},
		{name: "memory", cfg: config.StorageConfig{Type: "memory"}, want: &memory.Backend{}},
		{name: "sqlite", cfg: config.StorageConfig{Type: "sqlite"}, want: &gormstorage.Backend{}},
		{name: "influx", cfg: config.StorageConfig{Type: "influx"}, want: &influxstorage.Backend{}},
		{name: "unknown", cfg: config.StorageConfig{Type: "cassandra"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := storage.NewBackend(tt.cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, b)
			if g, ok := b.(*gormstorage.Backend); ok {
				require.NoError(t, g.Init())
				require.NoError(t, g.Close())
			}
		})
	}
}

func TestJournal_WithSQLiteBackend(t *testing.T) {
	b, err := storage.NewBackend(config.StorageConfig{Type: "sqlite"}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())

	j := storage.NewJournal(b, nil)
	j.Record(core.TrapEvent{Task: "a", Kind: core.EventPlaced, Coordinate: core.NewCoordinate(1, 1, 0)})
	j.Record(core.TrapEvent{Task: "a", Kind: core.EventPlaced, Coordinate: core.NewCoordinate(2, 1, 0)})
	require.NoError(t, j.Flush())

	s, err := j.Summary()
	require.NoError(t, err)
	assert.Equal(t, 2, s.ByKind[core.EventPlaced])
	require.NoError(t, j.Close())
}
