package lendermock

import (
	"context"

	domain "lending-backoffice/internal/domain/lender"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                 func(ctx context.Context, l *domain.Lender) error
	GetByLenderIDFn          func(ctx context.Context, lenderID string) (*domain.Lender, error)
	ListFn                   func(ctx context.Context) ([]domain.Lender, error)
	UpdateIfVersionMatchesFn func(ctx context.Context, l *domain.Lender, expectedVersion uint64) (*domain.Lender, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Lender) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLenderID(ctx context.Context, lenderID string) (*domain.Lender, error) {
	if m.GetByLenderIDFn != nil {
		return m.GetByLenderIDFn(ctx, lenderID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context) ([]domain.Lender, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *Repo) UpdateIfVersionMatches(ctx context.Context, l *domain.Lender, expectedVersion uint64) (*domain.Lender, error) {
	if m.UpdateIfVersionMatchesFn != nil {
		return m.UpdateIfVersionMatchesFn(ctx, l, expectedVersion)
	}
	return nil, context.Canceled
}
