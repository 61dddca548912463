// Package influxstorage writes the hunting journal to InfluxDB, falling back
// to a gzipped line-protocol file when the server cannot be reached.
package influxstorage

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"go.uber.org/multierr"

	"github.com/OCAP2/hunter/internal/config"
	"github.com/OCAP2/hunter/pkg/core"
)

// Measurement is the measurement every journal point is written to.
const Measurement = "trap_events"

const (
	pingTimeout    = 3 * time.Second
	retentionSecs  = 60 * 60 * 24 * 90
	backupFileMode = 0644
)

// Backend implements storage.Backend on InfluxDB.
type Backend struct {
	cfg config.InfluxConfig
	log *slog.Logger

	client influxdb2.Client
	writer influxdb2_api.WriteAPI
	// set when the server was unreachable at Init
	backupFile   *os.File
	backupWriter *gzip.Writer

	mu        sync.Mutex
	idCounter uint
	byKind    map[core.EventKind]int
}

// New creates a backend. Init connects.
func New(cfg config.InfluxConfig, log *slog.Logger) *Backend {
	if log == nil {
		log = slog.Default()
	}
	return &Backend{
		cfg:    cfg,
		log:    log.With("backend", "influx"),
		byKind: make(map[core.EventKind]int),
	}
}

// ServerURL is the address the client connects to.
func (b *Backend) ServerURL() string {
	return fmt.Sprintf("%s://%s:%s", b.cfg.Protocol, b.cfg.Host, b.cfg.Port)
}

// Init connects to InfluxDB and prepares the bucket. When the server does not
// answer, points go to the backup file instead.
func (b *Backend) Init() error {
	b.client = influxdb2.NewClientWithOptions(
		b.ServerURL(),
		b.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	running, err := b.client.Ping(ctx)
	if err != nil || !running {
		b.log.Warn("InfluxDB unreachable, writing to backup file", "url", b.ServerURL(), "path", b.cfg.BackupPath, "error", err)
		return b.openBackup()
	}

	if err := b.setupOrganizationAndBucket(); err != nil {
		return err
	}

	b.writer = b.client.WriteAPI(b.cfg.Org, b.cfg.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			b.log.Error("Error sending data to InfluxDB", "bucket", b.cfg.Bucket, "error", writeErr)
		}
	}(b.writer.Errors())

	b.log.Info("InfluxDB client initialized", "url", b.ServerURL(), "bucket", b.cfg.Bucket)
	return nil
}

func (b *Backend) openBackup() error {
	if b.cfg.BackupPath == "" {
		return errors.New("influxdb unreachable and no backup path configured")
	}
	file, err := os.OpenFile(b.cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, backupFileMode)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	b.backupFile = file
	b.backupWriter = gzip.NewWriter(file)
	return nil
}

func (b *Backend) setupOrganizationAndBucket() error {
	ctx := context.Background()

	org, err := b.client.OrganizationsAPI().FindOrganizationByName(ctx, b.cfg.Org)
	if err != nil {
		b.log.Info("Organization not found, creating", "org", b.cfg.Org)
		org, err = b.client.OrganizationsAPI().CreateOrganizationWithName(ctx, b.cfg.Org)
		if err != nil {
			return fmt.Errorf("error creating organization %q: %w", b.cfg.Org, err)
		}
	}

	if _, err = b.client.BucketsAPI().FindBucketByName(ctx, b.cfg.Bucket); err != nil {
		b.log.Info("Bucket not found, creating", "bucket", b.cfg.Bucket)

		rule := domain.RetentionRuleTypeExpire
		_, err = b.client.BucketsAPI().CreateBucketWithName(ctx, org, b.cfg.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: retentionSecs,
		})
		if err != nil {
			return fmt.Errorf("error creating bucket %q: %w", b.cfg.Bucket, err)
		}
	}
	return nil
}

// Close flushes pending points and releases the client or backup file.
func (b *Backend) Close() error {
	var err error
	if b.writer != nil {
		b.writer.Flush()
	}
	if b.client != nil {
		b.client.Close()
	}
	if b.backupWriter != nil {
		err = multierr.Append(err, b.backupWriter.Close())
	}
	if b.backupFile != nil {
		err = multierr.Append(err, b.backupFile.Close())
	}
	return err
}

// Point converts e into a point of the trap_events measurement.
func Point(e *core.TrapEvent) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement(Measurement)
	// line protocol rejects empty tag values
	for _, tag := range [][2]string{
		{"task", e.Task},
		{"trap_type", e.TrapType},
		{"kind", string(e.Kind)},
		{"strategy", e.Strategy},
	} {
		if tag[1] != "" {
			p.AddTag(tag[0], tag[1])
		}
	}
	p.AddField("id", int64(e.ID)).
		AddField("x", e.Coordinate.X).
		AddField("y", e.Coordinate.Y).
		AddField("plane", e.Coordinate.Plane).
		SetTime(e.Time)
	for k, v := range e.Details {
		p.AddField("detail_"+k, v)
	}
	return p
}

// RecordTrapEvent assigns an ID and writes e.
func (b *Backend) RecordTrapEvent(e *core.TrapEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	e.ID = b.idCounter
	point := Point(e)

	switch {
	case b.writer != nil:
		b.writer.WritePoint(point)
	case b.backupWriter != nil:
		line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
		if _, err := b.backupWriter.Write([]byte(line + "\n")); err != nil {
			return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
		}
	default:
		return errors.New("influxdb backend not initialized")
	}

	b.byKind[e.Kind]++
	return nil
}

// Summary counts the events written by this process.
func (b *Backend) Summary() (core.EventSummary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := core.EventSummary{ByKind: make(map[core.EventKind]int, len(b.byKind))}
	for k, n := range b.byKind {
		s.ByKind[k] = n
		s.Total += n
	}
	return s, nil
}
