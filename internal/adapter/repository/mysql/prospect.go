package mysql

import (
	"context"

	"gorm.io/gorm"

	prospectDomain "lending-backoffice/internal/domain/prospect"
)

type ProspectRepository struct{ db *gorm.DB }

func NewProspectRepository(db *gorm.DB) *ProspectRepository { return &ProspectRepository{db: db} }

func (r *ProspectRepository) Create(ctx context.Context, p *prospectDomain.Prospect) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProspectRepository) GetByProspectID(ctx context.Context, prospectID string) (*prospectDomain.Prospect, error) {
	var out prospectDomain.Prospect
	res := r.db.WithContext(ctx).Where("prospect_id = ?", prospectID).First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *ProspectRepository) GetByCode(ctx context.Context, code string) (*prospectDomain.Prospect, error) {
	var out prospectDomain.Prospect
	res := r.db.WithContext(ctx).Where("code = ?", code).First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *ProspectRepository) List(ctx context.Context, f prospectDomain.ListFilter) ([]prospectDomain.Prospect, error) {
	q := r.db.WithContext(ctx).Model(&prospectDomain.Prospect{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AssignedTo != "" {
		q = q.Where("assigned_to = ?", f.AssignedTo)
	}
	var out []prospectDomain.Prospect
	res := q.Order("created_at DESC, id DESC").Find(&out)
	return out, res.Error
}

// UpdateIfVersionMatches is the optimistic-concurrency write: the row is
// replaced only while it still carries expectedVersion. Zero rows affected
// means another writer got there first.
func (r *ProspectRepository) UpdateIfVersionMatches(ctx context.Context, p *prospectDomain.Prospect, expectedVersion uint64) (*prospectDomain.Prospect, error) {
	p.Version = expectedVersion + 1
	res := r.db.WithContext(ctx).
		Model(&prospectDomain.Prospect{}).
		Where("prospect_id = ? AND version = ?", p.ProspectID, expectedVersion).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(p)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, prospectDomain.ErrConflict
	}
	return r.GetByProspectID(ctx, p.ProspectID)
}
