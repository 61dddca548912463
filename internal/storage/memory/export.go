// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// JournalExport is the root JSON structure
type JournalExport struct {
	Task     string         `json:"task"`
	TrapType string         `json:"trapType"`
	Started  time.Time      `json:"started"`
	Ended    time.Time      `json:"ended"`
	Summary  map[string]int `json:"summary"`
	Events   []EventJSON    `json:"events"`
}

// EventJSON is one journal entry
type EventJSON struct {
	ID       uint           `json:"id"`
	Time     time.Time      `json:"time"`
	Kind     string         `json:"kind"`
	Position [3]int         `json:"position"`
	Strategy string         `json:"strategy,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// exportJSON writes the journal to a JSON file, gzipped if configured.
// Callers hold the lock.
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	name := strings.ReplaceAll(export.Task, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	timestamp := export.Started.Format("20060102_150405")

	filename := fmt.Sprintf("%s_%s.json", name, timestamp)
	if b.cfg.CompressOutput {
		filename += ".gz"
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, export)
	} else {
		err = writeJSON(outputPath, export)
	}
	if err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() JournalExport {
	first, last := b.events[0], b.events[len(b.events)-1]
	export := JournalExport{
		Task:     first.Task,
		TrapType: first.TrapType,
		Started:  first.Time,
		Ended:    last.Time,
		Summary:  make(map[string]int, len(b.byKind)),
		Events:   make([]EventJSON, 0, len(b.events)),
	}
	for k, n := range b.byKind {
		export.Summary[string(k)] = n
	}
	for _, e := range b.events {
		export.Events = append(export.Events, EventJSON{
			ID:       e.ID,
			Time:     e.Time,
			Kind:     string(e.Kind),
			Position: [3]int{e.Coordinate.X, e.Coordinate.Y, e.Coordinate.Plane},
			Strategy: e.Strategy,
			Details:  e.Details,
		})
	}
	return export
}

func writeJSON(path string, data JournalExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(data)
}

func writeGzipJSON(path string, data JournalExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}

