package lender

import "context"

type Repository interface {
	Create(ctx context.Context, l *Lender) error
	GetByLenderID(ctx context.Context, lenderID string) (*Lender, error)
	List(ctx context.Context) ([]Lender, error)
	// UpdateIfVersionMatches persists l conditioned on the stored row still
	// carrying expectedVersion; ErrConflict when it does not.
	UpdateIfVersionMatches(ctx context.Context, l *Lender, expectedVersion uint64) (*Lender, error)
}
