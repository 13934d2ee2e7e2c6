package gormstore

import (
	"context"
	"fmt"

	"github.com/dkeye/LiveRoom/internal/domain"
	"gorm.io/gorm"
)

type Journal struct {
	db *gorm.DB
}

func NewJournal(db *gorm.DB) *Journal { return &Journal{db: db} }

func (j *Journal) Append(ctx context.Context, recs ...domain.PurchaseRecord) error {
	if len(recs) == 0 {
		return nil
	}
	rows := make([]recordRow, len(recs))
	for i, r := range recs {
		rows[i] = toRecordRow(r)
	}
	if err := j.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}

func (j *Journal) ListByUser(ctx context.Context, id domain.UserID, limit int) ([]domain.PurchaseRecord, error) {
	q := j.db.WithContext(ctx).Where("user_id = ?", string(id)).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []recordRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	out := make([]domain.PurchaseRecord, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}
