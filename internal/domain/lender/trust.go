package lender

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"lending-backoffice/pkg/id"
)

type TransactionInput struct {
	Type            EventType
	Date            time.Time
	Description     string
	Amount          decimal.Decimal
	RelatedLoanID   string
	RelatedLoanCode string
}

// RecordTransaction appends a trust-account event and moves the running
// balance. Withdrawal-class types must be covered by the current balance;
// any validation failure applies no change at all.
func RecordTransaction(l *Lender, in TransactionInput) (*TrustAccountEvent, error) {
	if !in.Type.valid() {
		return nil, fmt.Errorf("%w: unknown trust event type %q", ErrValidation, in.Type)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", ErrValidation, in.Amount)
	}
	if in.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: event date is required", ErrValidation)
	}
	if in.Type.Withdraws() && in.Amount.GreaterThan(l.TrustBalance) {
		return nil, fmt.Errorf("%w: %s of %s exceeds balance %s",
			ErrInsufficientFunds, in.Type, in.Amount, l.TrustBalance)
	}

	ev := TrustAccountEvent{
		ID:              id.NewID32(),
		EventType:       in.Type,
		EventDate:       in.Date,
		Description:     in.Description,
		Amount:          in.Amount,
		RelatedLoanID:   in.RelatedLoanID,
		RelatedLoanCode: in.RelatedLoanCode,
	}
	l.TrustAccountEvents = append(l.TrustAccountEvents, ev)
	// kept in event_date order for display
	sort.SliceStable(l.TrustAccountEvents, func(i, j int) bool {
		return l.TrustAccountEvents[i].EventDate.Before(l.TrustAccountEvents[j].EventDate)
	})

	if in.Type.Withdraws() {
		l.TrustBalance = l.TrustBalance.Sub(in.Amount)
	} else {
		l.TrustBalance = l.TrustBalance.Add(in.Amount)
	}
	return &ev, nil
}

// ReplayBalance recomputes the balance from the full event history. It must
// always equal TrustBalance; the stored figure stays authoritative for reads.
func ReplayBalance(l *Lender) decimal.Decimal {
	total := decimal.Zero
	for _, ev := range l.TrustAccountEvents {
		if ev.EventType.Withdraws() {
			total = total.Sub(ev.Amount)
		} else {
			total = total.Add(ev.Amount)
		}
	}
	return total
}
