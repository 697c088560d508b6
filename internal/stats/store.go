package stats

import (
	"context"
	"errors"

	"github.com/elbara99/ai-counter-cafeteria/internal/domain"
)

// Store persists the whole stats record under a single key. The service does
// read-modify-write with last-writer-wins, which is acceptable for a
// single-process counter.
type Store interface {
	Load(ctx context.Context) (domain.StatsRecord, error)
	Save(ctx context.Context, rec domain.StatsRecord) error
}

// ErrNotFound means no record has been persisted yet; callers start from
// zeros.
var ErrNotFound = errors.New("stats record not found")
