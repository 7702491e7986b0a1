package prospect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "lending-backoffice/internal/domain/prospect"
	"lending-backoffice/internal/domain/user"
	"lending-backoffice/internal/session"
	"lending-backoffice/pkg/id"
)

// Usecase is the single writer path for prospects/loans. Every mutation runs
// the same shape: resolve, derive dependent fields on a clone, apply the clone
// to the session view optimistically, persist under the version check, then
// either confirm from the backend or restore the pre-update snapshot.
type Usecase struct {
	repo  domain.Repository
	users user.Repository
	orig  domain.OriginatorIdentity
	log   *zap.Logger
}

func NewUsecase(repo domain.Repository, users user.Repository, orig domain.OriginatorIdentity, log *zap.Logger) *Usecase {
	return &Usecase{repo: repo, users: users, orig: orig, log: log}
}

type CreateInput struct {
	Code         string
	BorrowerName string
	BorrowerType domain.BorrowerType
	LoanType     domain.LoanType
	LoanAmount   decimal.Decimal
	AssignedTo   string
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*domain.Prospect, error) {
	if in.BorrowerName == "" {
		return nil, fmt.Errorf("%w: borrower name is required", domain.ErrValidation)
	}
	switch in.BorrowerType {
	case domain.BorrowerIndividual, domain.BorrowerCompany, domain.BorrowerBoth:
	default:
		return nil, fmt.Errorf("%w: unknown borrower type %q", domain.ErrValidation, in.BorrowerType)
	}
	switch in.LoanType {
	case domain.LoanPurchase, domain.LoanRefinance:
	default:
		return nil, fmt.Errorf("%w: unknown loan type %q", domain.ErrValidation, in.LoanType)
	}
	if !in.LoanAmount.IsPositive() {
		return nil, fmt.Errorf("%w: loan amount must be positive", domain.ErrValidation)
	}

	publicID := id.NewID32()
	code := in.Code
	if code == "" {
		code = "P-" + strings.ToUpper(publicID[:8])
	} else {
		_, err := u.repo.GetByCode(ctx, code)
		switch {
		case err == nil:
			return nil, fmt.Errorf("%w: code %s is already in use", domain.ErrValidation, code)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
		}
	}
	p := &domain.Prospect{
		ProspectID:       publicID,
		Code:             code,
		BorrowerName:     in.BorrowerName,
		BorrowerType:     in.BorrowerType,
		LoanType:         in.LoanType,
		LoanAmount:       in.LoanAmount,
		Status:           domain.StatusInProgress,
		CurrentStage:     1,
		CurrentStageName: domain.StagePrevalidation,
		Stages:           domain.NewStages(in.BorrowerType, in.LoanType),
		Version:          1,
	}
	if in.AssignedTo != "" {
		assignee, err := u.users.GetByUserID(ctx, in.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("%w: assigned user %s not found", domain.ErrValidation, in.AssignedTo)
		}
		p.AssignedTo = assignee.UserID
		p.AssignedToName = assignee.DisplayName
	}

	if err := u.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	u.log.Info("prospect created", zap.String("prospect_id", p.ProspectID), zap.String("code", p.Code))
	return p, nil
}

func (u *Usecase) Get(ctx context.Context, prospectID string) (*domain.Prospect, error) {
	p, err := u.repo.GetByProspectID(ctx, prospectID)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domain.ErrNotFound
	default:
		return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
}

func (u *Usecase) List(ctx context.Context, f domain.ListFilter) ([]domain.Prospect, error) {
	out, err := u.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	return out, nil
}

// mutate runs one orchestrated update: fn receives a clone of the last-known
// entity and edits it freely; an fn error aborts before anything is touched.
func (u *Usecase) mutate(ctx context.Context, sess *session.Session, prospectID string, fn func(p *domain.Prospect) error) (*domain.Prospect, error) {
	prev := sess.Prospect(prospectID)
	if prev == nil {
		fetched, err := u.repo.GetByProspectID(ctx, prospectID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, domain.ErrNotFound
		case err != nil:
			return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
		}
		prev = fetched
		sess.PutProspect(prev)
	}

	working := prev.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	// optimistic apply before the backend confirms
	sess.PutProspect(working)

	confirmed, err := u.repo.UpdateIfVersionMatches(ctx, working, prev.Version)
	if err != nil {
		sess.PutProspect(prev)
		switch {
		case errors.Is(err, domain.ErrConflict):
			u.log.Warn("optimistic concurrency conflict",
				zap.String("prospect_id", prospectID), zap.Uint64("version", prev.Version))
			return nil, domain.ErrConflict
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, domain.ErrNotFound
		default:
			return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
		}
	}
	// the backend-confirmed row wins over the speculative one
	sess.PutProspect(confirmed)
	return confirmed, nil
}

func (u *Usecase) now() time.Time { return time.Now().UTC() }
