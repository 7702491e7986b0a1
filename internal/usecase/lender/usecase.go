package lender

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "lending-backoffice/internal/domain/lender"
	"lending-backoffice/internal/session"
	"lending-backoffice/pkg/id"
)

type Usecase struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewUsecase(r domain.Repository, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, log: log}
}

type CreateInput struct {
	Account        string
	LenderName     string
	Address        string
	PortfolioValue decimal.Decimal
}

// Create registers a lender (admin action). Lenders are never deleted; their
// trust history only grows.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*domain.Lender, error) {
	if in.LenderName == "" {
		return nil, fmt.Errorf("%w: lender name is required", domain.ErrValidation)
	}
	l := &domain.Lender{
		LenderID:       id.NewID32(),
		Account:        in.Account,
		LenderName:     in.LenderName,
		Address:        in.Address,
		PortfolioValue: in.PortfolioValue,
		TrustBalance:   decimal.Zero,
		Version:        1,
	}
	if err := u.repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	u.log.Info("lender created", zap.String("lender_id", l.LenderID), zap.String("name", l.LenderName))
	return l, nil
}

func (u *Usecase) Get(ctx context.Context, lenderID string) (*domain.Lender, error) {
	l, err := u.repo.GetByLenderID(ctx, lenderID)
	switch {
	case err == nil:
		return l, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domain.ErrNotFound
	default:
		return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
}

func (u *Usecase) List(ctx context.Context) ([]domain.Lender, error) {
	out, err := u.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	return out, nil
}

// AddTrustTransaction is the atomic trust-account operation: validate, append
// the event, move the balance, persist under the version check. A conflict
// discards the speculative view entirely; the caller refetches authoritative
// state rather than merging.
func (u *Usecase) AddTrustTransaction(ctx context.Context, sess *session.Session, lenderID string, in domain.TransactionInput) (*domain.Lender, error) {
	prev := sess.Lender(lenderID)
	if prev == nil {
		fetched, err := u.repo.GetByLenderID(ctx, lenderID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, domain.ErrNotFound
		case err != nil:
			return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
		}
		prev = fetched
		sess.PutLender(prev)
	}

	working := prev.Clone()
	if _, err := domain.RecordTransaction(working, in); err != nil {
		return nil, err
	}

	sess.PutLender(working)
	confirmed, err := u.repo.UpdateIfVersionMatches(ctx, working, prev.Version)
	if err != nil {
		sess.PutLender(prev)
		switch {
		case errors.Is(err, domain.ErrConflict):
			u.log.Warn("trust transaction conflict", zap.String("lender_id", lenderID))
			return nil, domain.ErrConflict
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, domain.ErrNotFound
		default:
			return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
		}
	}
	sess.PutLender(confirmed)
	return confirmed, nil
}
