package uow

import (
	"context"

	"lending-backoffice/internal/domain/lender"
	"lending-backoffice/internal/domain/prospect"
	"lending-backoffice/internal/domain/user"
)

type Repos struct {
	Prospects prospect.Repository
	Lenders   lender.Repository
	Users     user.Repository
}

// UnitOfWork runs multi-repository flows in one backend transaction, so a
// loan-ledger write and its trust-ledger side effects commit or roll back
// together.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
