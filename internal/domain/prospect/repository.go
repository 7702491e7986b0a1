package prospect

import "context"

type ListFilter struct {
	Status     Status
	AssignedTo string
}

type Repository interface {
	Create(ctx context.Context, p *Prospect) error
	GetByProspectID(ctx context.Context, prospectID string) (*Prospect, error)
	GetByCode(ctx context.Context, code string) (*Prospect, error)
	List(ctx context.Context, f ListFilter) ([]Prospect, error)
	// UpdateIfVersionMatches persists p conditioned on the stored row still
	// carrying expectedVersion. Returns ErrConflict when the row has moved on,
	// otherwise the backend-confirmed representation.
	UpdateIfVersionMatches(ctx context.Context, p *Prospect, expectedVersion uint64) (*Prospect, error)
}
