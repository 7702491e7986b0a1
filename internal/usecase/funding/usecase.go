package funding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	lenderDomain "lending-backoffice/internal/domain/lender"
	domain "lending-backoffice/internal/domain/prospect"
	"lending-backoffice/internal/domain/uow"
	"lending-backoffice/internal/domain/user"
	"lending-backoffice/internal/session"
	"lending-backoffice/pkg/id"
)

// Usecase records funding events, payments and their reversals. Loan-ledger
// and trust-ledger mutations run inside one unit of work, so either the event
// and every trust entry land together, or nothing does.
type Usecase struct {
	uow  uow.UnitOfWork
	orig domain.OriginatorIdentity
	log  *zap.Logger
}

func NewUsecase(tx uow.UnitOfWork, orig domain.OriginatorIdentity, log *zap.Logger) *Usecase {
	return &Usecase{uow: tx, orig: orig, log: log}
}

type EventInput struct {
	Date          time.Time
	TotalAmount   decimal.Decimal
	Notes         string
	Distributions []domain.Distribution
}

func (in EventInput) toDomain() domain.EventInput {
	return domain.EventInput{
		DateReceived:  in.Date,
		TotalAmount:   in.TotalAmount,
		Notes:         in.Notes,
		Distributions: in.Distributions,
	}
}

// RecordFunding distributes newly disbursed capital across funders and
// withdraws each third-party share from its lender's trust account.
func (u *Usecase) RecordFunding(ctx context.Context, sess *session.Session, prospectID string, in EventInput) (*domain.Prospect, error) {
	return u.record(ctx, sess, prospectID, func(r uow.Repos, p *domain.Prospect) (*domain.HistoryEvent, error) {
		ev, err := domain.ApplyFunding(p, u.orig, in.toDomain(), time.Now().UTC())
		if err != nil {
			return nil, err
		}
		stampAuthor(ctx, sess, ev)
		return ev, nil
	}, func(r uow.Repos, p *domain.Prospect, ev *domain.HistoryEvent) error {
		return u.applyTrust(ctx, sess, r, p, ev.Distributions, lenderDomain.EventFundingDisbursement, in.Date,
			fmt.Sprintf("Funding disbursement for loan %s", prospectCode(p)))
	})
}

// RecordPayment reduces principal across funders and deposits each lender's
// allocated share into its trust account.
func (u *Usecase) RecordPayment(ctx context.Context, sess *session.Session, prospectID string, in EventInput) (*domain.Prospect, error) {
	return u.record(ctx, sess, prospectID, func(r uow.Repos, p *domain.Prospect) (*domain.HistoryEvent, error) {
		ev, err := domain.ApplyPayment(p, in.toDomain(), time.Now().UTC())
		if err != nil {
			return nil, err
		}
		stampAuthor(ctx, sess, ev)
		return ev, nil
	}, func(r uow.Repos, p *domain.Prospect, ev *domain.HistoryEvent) error {
		return u.applyTrust(ctx, sess, r, p, ev.Distributions, lenderDomain.EventPaymentReceived, in.Date,
			fmt.Sprintf("Payment received on loan %s", prospectCode(p)))
	})
}

// DeleteHistoryEvent reverses exactly the recorded distributions of a funding
// or payment event and posts the offsetting trust entries. A payment reversal
// claws deposited proceeds back out of lender trust and is blocked when a
// trust balance cannot absorb it.
func (u *Usecase) DeleteHistoryEvent(ctx context.Context, sess *session.Session, prospectID, eventID string) (*domain.Prospect, error) {
	return u.record(ctx, sess, prospectID, func(r uow.Repos, p *domain.Prospect) (*domain.HistoryEvent, error) {
		return domain.ReverseEvent(p, u.orig, eventID)
	}, func(r uow.Repos, p *domain.Prospect, ev *domain.HistoryEvent) error {
		now := time.Now().UTC()
		switch ev.Type {
		case domain.EventFunding:
			return u.applyTrust(ctx, sess, r, p, ev.Distributions, lenderDomain.EventFundingReversal, now,
				fmt.Sprintf("Reversal of funding event on loan %s", prospectCode(p)))
		case domain.EventPayment:
			return u.applyTrust(ctx, sess, r, p, ev.Distributions, lenderDomain.EventPaymentReversal, now,
				fmt.Sprintf("Reversal of payment on loan %s", prospectCode(p)))
		}
		return fmt.Errorf("%w: unknown event type %q", domain.ErrValidation, ev.Type)
	})
}

type AddFunderInput struct {
	LenderID       string
	OriginalAmount decimal.Decimal
	LenderRate     decimal.Decimal
	ServicingFees  *domain.ServicingFees
}

// AddFunder registers a lender's participation record on a loan, denormalizing
// the lender's name and account at add time. The participation starts with a
// zero principal balance; capital moves only through funding events.
func (u *Usecase) AddFunder(ctx context.Context, sess *session.Session, prospectID string, in AddFunderInput) (*domain.Prospect, error) {
	if in.LenderID == "" {
		return nil, fmt.Errorf("%w: lender id is required", domain.ErrValidation)
	}
	var confirmed *domain.Prospect
	prev := sess.Prospect(prospectID)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, err := getProspect(ctx, r, prospectID)
		if err != nil {
			return err
		}
		l, err := r.Lenders.GetByLenderID(ctx, in.LenderID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("%w: lender %s not found", domain.ErrValidation, in.LenderID)
		case err != nil:
			return fmt.Errorf("%w: %v", domain.ErrBackend, err)
		}

		working := p.Clone()
		working.Funders = append(working.Funders, domain.Funder{
			ID:               id.NewID32(),
			LenderID:         l.LenderID,
			LenderAccount:    l.Account,
			LenderName:       l.LenderName,
			OriginalAmount:   in.OriginalAmount,
			LenderRate:       in.LenderRate,
			PrincipalBalance: decimal.Zero,
			PctOwned:         decimal.Zero,
			ServicingFees:    in.ServicingFees,
		})
		sess.PutProspect(working)
		confirmed, err = r.Prospects.UpdateIfVersionMatches(ctx, working, p.Version)
		return err
	})
	if err != nil {
		restore(sess, prospectID, prev)
		return nil, err
	}
	sess.PutProspect(confirmed)
	return confirmed, nil
}

// record is the shared transaction shape: load, apply the pure ledger change
// to a clone, persist under the version check, then post trust entries. Any
// failure rolls the whole transaction and the session view back.
func (u *Usecase) record(ctx context.Context, sess *session.Session, prospectID string,
	apply func(r uow.Repos, p *domain.Prospect) (*domain.HistoryEvent, error),
	trust func(r uow.Repos, p *domain.Prospect, ev *domain.HistoryEvent) error,
) (*domain.Prospect, error) {
	var confirmed *domain.Prospect
	prev := sess.Prospect(prospectID)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, err := getProspect(ctx, r, prospectID)
		if err != nil {
			return err
		}
		working := p.Clone()
		ev, err := apply(r, working)
		if err != nil {
			return err
		}
		sess.PutProspect(working)
		confirmed, err = r.Prospects.UpdateIfVersionMatches(ctx, working, p.Version)
		if err != nil {
			return err
		}
		return trust(r, confirmed, ev)
	})
	if err != nil {
		restore(sess, prospectID, prev)
		return nil, err
	}
	sess.PutProspect(confirmed)
	u.log.Info("ledger event recorded",
		zap.String("prospect_id", prospectID), zap.Int("history_len", len(confirmed.History)))
	return confirmed, nil
}

// applyTrust posts one trust-account entry per distribution to the owning
// lender, version-checked. The originator identity is the in-house account and
// carries no trust ledger; its shares are skipped.
func (u *Usecase) applyTrust(ctx context.Context, sess *session.Session, r uow.Repos, p *domain.Prospect,
	dists []domain.Distribution, evType lenderDomain.EventType, date time.Time, description string) error {
	for _, dist := range dists {
		f := p.FunderByID(dist.FunderID)
		if f == nil || f.LenderID == u.orig.LenderID {
			continue
		}
		l, err := r.Lenders.GetByLenderID(ctx, f.LenderID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("%w: funder %s has no lender record %s", domain.ErrValidation, f.ID, f.LenderID)
		case err != nil:
			return fmt.Errorf("%w: %v", domain.ErrBackend, err)
		}
		working := l.Clone()
		if _, err := lenderDomain.RecordTransaction(working, lenderDomain.TransactionInput{
			Type:            evType,
			Date:            date,
			Description:     description,
			Amount:          dist.Amount,
			RelatedLoanID:   p.ProspectID,
			RelatedLoanCode: p.Code,
		}); err != nil {
			return err
		}
		saved, err := r.Lenders.UpdateIfVersionMatches(ctx, working, l.Version)
		if err != nil {
			return err
		}
		sess.PutLender(saved)
	}
	return nil
}

func getProspect(ctx context.Context, r uow.Repos, prospectID string) (*domain.Prospect, error) {
	p, err := r.Prospects.GetByProspectID(ctx, prospectID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domain.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	return p, nil
}

func restore(sess *session.Session, prospectID string, prev *domain.Prospect) {
	if prev != nil {
		sess.PutProspect(prev)
		return
	}
	sess.DropProspect(prospectID)
}

func stampAuthor(ctx context.Context, sess *session.Session, ev *domain.HistoryEvent) {
	if actor, ok := user.FromContext(ctx); ok {
		ev.CreatedByID = actor.UserID
		ev.CreatedByName = actor.DisplayName
		return
	}
	ev.CreatedByID = sess.UserID
	ev.CreatedByName = sess.UserName
}

func prospectCode(p *domain.Prospect) string {
	if p.Code != "" {
		return p.Code
	}
	return p.ProspectID
}
