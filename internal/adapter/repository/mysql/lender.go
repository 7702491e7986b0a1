package mysql

import (
	"context"

	"gorm.io/gorm"

	lenderDomain "lending-backoffice/internal/domain/lender"
)

type LenderRepository struct{ db *gorm.DB }

func NewLenderRepository(db *gorm.DB) *LenderRepository { return &LenderRepository{db: db} }

func (r *LenderRepository) Create(ctx context.Context, l *lenderDomain.Lender) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LenderRepository) GetByLenderID(ctx context.Context, lenderID string) (*lenderDomain.Lender, error) {
	var out lenderDomain.Lender
	res := r.db.WithContext(ctx).Where("lender_id = ?", lenderID).First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *LenderRepository) List(ctx context.Context) ([]lenderDomain.Lender, error) {
	var out []lenderDomain.Lender
	res := r.db.WithContext(ctx).Order("lender_name ASC, id ASC").Find(&out)
	return out, res.Error
}

func (r *LenderRepository) UpdateIfVersionMatches(ctx context.Context, l *lenderDomain.Lender, expectedVersion uint64) (*lenderDomain.Lender, error) {
	l.Version = expectedVersion + 1
	res := r.db.WithContext(ctx).
		Model(&lenderDomain.Lender{}).
		Where("lender_id = ? AND version = ?", l.LenderID, expectedVersion).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(l)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, lenderDomain.ErrConflict
	}
	return r.GetByLenderID(ctx, l.LenderID)
}
