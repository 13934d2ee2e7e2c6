package memory

import (
	"context"
	"sync"

	"github.com/dkeye/LiveRoom/internal/domain"
)

// Journal is an append-only slice of purchase records.
type Journal struct {
	mu   sync.RWMutex
	recs []domain.PurchaseRecord
}

func NewJournal() *Journal { return &Journal{} }

func (j *Journal) Append(_ context.Context, recs ...domain.PurchaseRecord) error {
	j.mu.Lock()
	j.recs = append(j.recs, recs...)
	j.mu.Unlock()
	return nil
}

// ListByUser returns the newest records of id first. limit <= 0 means all.
func (j *Journal) ListByUser(_ context.Context, id domain.UserID, limit int) ([]domain.PurchaseRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var out []domain.PurchaseRecord
	for i := len(j.recs) - 1; i >= 0; i-- {
		if j.recs[i].UserID != id {
			continue
		}
		out = append(out, j.recs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
