package prospect

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	domain "lending-backoffice/internal/domain/prospect"
	"lending-backoffice/internal/domain/user"
	"lending-backoffice/internal/session"
)

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	BorrowerName    *string
	BorrowerType    *domain.BorrowerType
	LoanType        *domain.LoanType
	LoanAmount      *decimal.Decimal
	AssignedTo      *string
	Terms           *domain.Terms
	Funders         *[]domain.Funder
	History         *[]domain.HistoryEvent
	Properties      datatypes.JSON
	CoBorrowers     datatypes.JSON
	BorrowerDetails datatypes.JSON
}

// ApplyUpdate merges a partial update onto the current entity, derives the
// dependent fields, and persists through the orchestrated path.
func (u *Usecase) ApplyUpdate(ctx context.Context, sess *session.Session, prospectID string, patch Patch) (*domain.Prospect, error) {
	return u.mutate(ctx, sess, prospectID, func(p *domain.Prospect) error {
		return u.applyPatch(ctx, sess, p, patch)
	})
}

func (u *Usecase) applyPatch(ctx context.Context, sess *session.Session, p *domain.Prospect, patch Patch) error {
	if patch.BorrowerName != nil {
		if *patch.BorrowerName == "" {
			return fmt.Errorf("%w: borrower name cannot be empty", domain.ErrValidation)
		}
		p.BorrowerName = *patch.BorrowerName
	}

	typeChanged := false
	if patch.BorrowerType != nil && *patch.BorrowerType != p.BorrowerType {
		switch *patch.BorrowerType {
		case domain.BorrowerIndividual, domain.BorrowerCompany, domain.BorrowerBoth:
		default:
			return fmt.Errorf("%w: unknown borrower type %q", domain.ErrValidation, *patch.BorrowerType)
		}
		p.BorrowerType = *patch.BorrowerType
		typeChanged = true
	}
	if patch.LoanType != nil && *patch.LoanType != p.LoanType {
		switch *patch.LoanType {
		case domain.LoanPurchase, domain.LoanRefinance:
		default:
			return fmt.Errorf("%w: unknown loan type %q", domain.ErrValidation, *patch.LoanType)
		}
		p.LoanType = *patch.LoanType
		typeChanged = true
	}
	if typeChanged {
		// a type change replaces the Pre-validation checklist; statuses reset
		for i := range p.Stages {
			if p.Stages[i].Name == domain.StagePrevalidation {
				p.Stages[i].Documents = domain.PrevalidationDocuments(p.BorrowerType, p.LoanType)
			}
		}
	}

	if patch.LoanAmount != nil {
		if !patch.LoanAmount.IsPositive() {
			return fmt.Errorf("%w: loan amount must be positive", domain.ErrValidation)
		}
		p.LoanAmount = *patch.LoanAmount
		// before funding, the requested amount is the principal
		if p.Status == domain.StatusInProgress && p.Terms != nil {
			p.Terms.PrincipalBalance = *patch.LoanAmount
		}
	}

	if patch.AssignedTo != nil {
		if *patch.AssignedTo == "" {
			p.AssignedTo = ""
			p.AssignedToName = ""
		} else {
			assignee, err := u.users.GetByUserID(ctx, *patch.AssignedTo)
			if err != nil {
				return fmt.Errorf("%w: assigned user %s not found", domain.ErrValidation, *patch.AssignedTo)
			}
			p.AssignedTo = assignee.UserID
			p.AssignedToName = assignee.DisplayName
		}
	}

	if patch.Terms != nil {
		p.Terms = patch.Terms
	}
	if patch.Funders != nil {
		p.Funders = *patch.Funders
	}
	if patch.History != nil {
		p.History = *patch.History
		for i := range p.History {
			if p.History[i].CreatedByID == "" {
				stampAuthor(ctx, sess, &p.History[i])
			}
		}
	}

	if patch.Properties != nil {
		p.Properties = patch.Properties
	}
	if patch.CoBorrowers != nil {
		p.CoBorrowers = patch.CoBorrowers
	}
	if patch.BorrowerDetails != nil {
		p.BorrowerDetails = patch.BorrowerDetails
	}
	return nil
}

// stampAuthor attributes a history entry to the acting user: the context
// identity when the middleware resolved one, else the session owner.
func stampAuthor(ctx context.Context, sess *session.Session, ev *domain.HistoryEvent) {
	if actor, ok := user.FromContext(ctx); ok {
		ev.CreatedByID = actor.UserID
		ev.CreatedByName = actor.DisplayName
		return
	}
	ev.CreatedByID = sess.UserID
	ev.CreatedByName = sess.UserName
}
