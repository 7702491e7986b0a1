package prospectmock

import (
	"context"

	domain "lending-backoffice/internal/domain/prospect"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateFn                 func(ctx context.Context, p *domain.Prospect) error
	GetByProspectIDFn        func(ctx context.Context, prospectID string) (*domain.Prospect, error)
	GetByCodeFn              func(ctx context.Context, code string) (*domain.Prospect, error)
	ListFn                   func(ctx context.Context, f domain.ListFilter) ([]domain.Prospect, error)
	UpdateIfVersionMatchesFn func(ctx context.Context, p *domain.Prospect, expectedVersion uint64) (*domain.Prospect, error)
}

func (m *Repo) Create(ctx context.Context, p *domain.Prospect) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByProspectID(ctx context.Context, prospectID string) (*domain.Prospect, error) {
	if m.GetByProspectIDFn != nil {
		return m.GetByProspectIDFn(ctx, prospectID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByCode(ctx context.Context, code string) (*domain.Prospect, error) {
	if m.GetByCodeFn != nil {
		return m.GetByCodeFn(ctx, code)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Prospect, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) UpdateIfVersionMatches(ctx context.Context, p *domain.Prospect, expectedVersion uint64) (*domain.Prospect, error) {
	if m.UpdateIfVersionMatchesFn != nil {
		return m.UpdateIfVersionMatchesFn(ctx, p, expectedVersion)
	}
	return nil, context.Canceled
}
