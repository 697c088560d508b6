// Package exporter serializes order and session snapshots to JSON files in
// the export directory. Files are written atomically: a failed export leaves
// nothing behind.
package exporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/elbara99/ai-counter-cafeteria/internal/domain"
)

// Currency of the reference deployment.
const Currency = "DZD"

// ErrEmptyOrder is returned when an export is requested for an empty cart.
var ErrEmptyOrder = errors.New("cart is empty, nothing to export")

// SessionExport is the aggregate shape: the whole session's counters.
type SessionExport struct {
	ExportTimestamp time.Time          `json:"exportTimestamp"`
	Stats           domain.StatsRecord `json:"stats"`
}

// Exporter writes export artifacts into dir.
type Exporter struct {
	dir string
	now func() time.Time
}

// New returns an exporter writing into dir, creating it if needed.
func New(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &Exporter{dir: dir, now: time.Now}, nil
}

// ExportOrder builds the write-once order artifact and writes it to disk.
// Returns the built export and the file path. Order ids combine a timestamp
// with a random suffix; collisions are negligible at counter scale.
func (e *Exporter) ExportOrder(items []domain.CartItem, total float64) (domain.OrderExport, string, error) {
	if len(items) == 0 {
		return domain.OrderExport{}, "", ErrEmptyOrder
	}

	now := e.now()
	order := domain.OrderExport{
		OrderID:    orderID(now),
		Timestamp:  now,
		Items:      items,
		Total:      total,
		ItemsCount: len(items),
		Currency:   Currency,
	}

	path := filepath.Join(e.dir, order.OrderID+".json")
	if err := e.writeJSON(path, order); err != nil {
		return domain.OrderExport{}, "", fmt.Errorf("order export failed: %w", err)
	}
	return order, path, nil
}

// ExportSession writes the aggregate stats snapshot for the whole session.
func (e *Exporter) ExportSession(rec domain.StatsRecord) (string, error) {
	now := e.now()
	snapshot := SessionExport{
		ExportTimestamp: now,
		Stats:           rec,
	}

	name := fmt.Sprintf("session-%s.json", now.Format("20060102T150405"))
	path := filepath.Join(e.dir, name)
	if err := e.writeJSON(path, snapshot); err != nil {
		return "", fmt.Errorf("session export failed: %w", err)
	}
	return path, nil
}

// writeJSON marshals v and moves it into place via a temp file, so a failure
// mid-write never leaves a partial artifact.
func (e *Exporter) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	tmp, err := os.CreateTemp(e.dir, ".export-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finish export: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to place export: %w", err)
	}
	return nil
}

func orderID(now time.Time) string {
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("order-%s-%s", now.Format("20060102T150405"), suffix)
}
