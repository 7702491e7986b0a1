package uowmock

import (
	"context"
	"errors"

	"lending-backoffice/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn func(ctx context.Context, fn func(r uow.Repos) error) error
	// Repos is handed to fn by the default WithinTx passthrough.
	Repos uow.Repos
}

func New() *UoW { return &UoW{} }

func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}

// WithRepos makes WithinTx a plain passthrough over the given repositories,
// with no transactional wrapping. Most usecase tests want exactly that.
func (m *UoW) WithRepos(r uow.Repos) *UoW {
	m.Repos = r
	return m
}

func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	if m.Repos.Prospects != nil || m.Repos.Lenders != nil || m.Repos.Users != nil {
		return fn(m.Repos)
	}
	return errUnimplemented
}
