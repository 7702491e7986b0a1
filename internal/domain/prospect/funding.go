package prospect

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"lending-backoffice/pkg/id"
)

// distributionTolerance absorbs cent-level drift between an event total and
// the sum of its distributions.
var distributionTolerance = decimal.NewFromFloat(0.01)

const ownershipScale = 8

type EventInput struct {
	DateReceived  time.Time
	TotalAmount   decimal.Decimal
	Notes         string
	Distributions []Distribution
}

func sumDistributions(dists []Distribution) decimal.Decimal {
	total := decimal.Zero
	for _, d := range dists {
		total = total.Add(d.Amount)
	}
	return total
}

func validateDistributions(p *Prospect, in EventInput) error {
	if !in.TotalAmount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrValidation, in.TotalAmount)
	}
	if len(in.Distributions) == 0 {
		return fmt.Errorf("%w: at least one distribution is required", ErrValidation)
	}
	for _, d := range in.Distributions {
		if p.FunderByID(d.FunderID) == nil {
			return fmt.Errorf("%w: unknown funder %s", ErrValidation, d.FunderID)
		}
	}
	if diff := sumDistributions(in.Distributions).Sub(in.TotalAmount).Abs(); diff.GreaterThan(distributionTolerance) {
		return fmt.Errorf("%w: distributions sum to %s, event total is %s",
			ErrValidation, sumDistributions(in.Distributions), in.TotalAmount)
	}
	return nil
}

// RecomputeOwnership resets every funder's pct_owned to its share of total
// current principal. A zero total yields all-zero shares.
func RecomputeOwnership(funders []Funder) {
	total := decimal.Zero
	for i := range funders {
		total = total.Add(funders[i].PrincipalBalance)
	}
	for i := range funders {
		if total.IsZero() {
			funders[i].PctOwned = decimal.Zero
			continue
		}
		funders[i].PctOwned = funders[i].PrincipalBalance.DivRound(total, ownershipScale)
	}
}

func syncPrincipal(p *Prospect) {
	total := decimal.Zero
	for i := range p.Funders {
		total = total.Add(p.Funders[i].PrincipalBalance)
	}
	p.Terms.PrincipalBalance = total
}

// ApplyFunding records a funding event: each listed funder's principal grows
// by its distributed amount, and when participation flows to third parties the
// originator's retained share shrinks by the amount sold (new money into a
// participant buys a piece of the originator's position, it does not create
// fresh principal). Validation failures leave the prospect untouched.
func ApplyFunding(p *Prospect, orig OriginatorIdentity, in EventInput, now time.Time) (*HistoryEvent, error) {
	if p.Terms == nil {
		return nil, fmt.Errorf("%w: prospect is not a funded loan", ErrValidation)
	}
	if err := validateDistributions(p, in); err != nil {
		return nil, err
	}

	soldToOthers := decimal.Zero
	for _, d := range in.Distributions {
		f := p.FunderByID(d.FunderID)
		f.PrincipalBalance = f.PrincipalBalance.Add(d.Amount)
		if f.LenderID != orig.LenderID {
			soldToOthers = soldToOthers.Add(d.Amount)
		}
	}
	for i := range p.Funders {
		if p.Funders[i].LenderID == orig.LenderID && soldToOthers.IsPositive() {
			p.Funders[i].PrincipalBalance = p.Funders[i].PrincipalBalance.Sub(soldToOthers)
		}
	}
	RecomputeOwnership(p.Funders)
	syncPrincipal(p)

	ev := HistoryEvent{
		ID:            id.NewID32(),
		Type:          EventFunding,
		DateCreated:   now,
		DateReceived:  in.DateReceived,
		TotalAmount:   in.TotalAmount,
		Notes:         in.Notes,
		Distributions: append([]Distribution(nil), in.Distributions...),
	}
	p.History = append(p.History, ev)
	return &p.History[len(p.History)-1], nil
}

// ApplyPayment records a principal reduction distributed across funders.
func ApplyPayment(p *Prospect, in EventInput, now time.Time) (*HistoryEvent, error) {
	if p.Terms == nil {
		return nil, fmt.Errorf("%w: prospect is not a funded loan", ErrValidation)
	}
	if err := validateDistributions(p, in); err != nil {
		return nil, err
	}
	if in.TotalAmount.GreaterThan(p.Terms.PrincipalBalance.Add(distributionTolerance)) {
		return nil, fmt.Errorf("%w: payment %s exceeds principal balance %s",
			ErrValidation, in.TotalAmount, p.Terms.PrincipalBalance)
	}

	for _, d := range in.Distributions {
		f := p.FunderByID(d.FunderID)
		f.PrincipalBalance = f.PrincipalBalance.Sub(d.Amount)
	}
	RecomputeOwnership(p.Funders)
	syncPrincipal(p)

	ev := HistoryEvent{
		ID:            id.NewID32(),
		Type:          EventPayment,
		DateCreated:   now,
		DateReceived:  in.DateReceived,
		TotalAmount:   in.TotalAmount,
		Notes:         in.Notes,
		Distributions: append([]Distribution(nil), in.Distributions...),
	}
	p.History = append(p.History, ev)
	return &p.History[len(p.History)-1], nil
}

// ReverseEvent undoes exactly the recorded distributions of a history event
// (including, for funding events, the participation-sale offset taken from the
// originator) and removes it. Removal happens last; any failure leaves history
// intact.
func ReverseEvent(p *Prospect, orig OriginatorIdentity, eventID string) (*HistoryEvent, error) {
	if p.Terms == nil {
		return nil, fmt.Errorf("%w: prospect is not a funded loan", ErrValidation)
	}
	idx := -1
	for i := range p.History {
		if p.History[i].ID == eventID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: history event %s", ErrNotFound, eventID)
	}
	ev := p.History[idx]
	for _, d := range ev.Distributions {
		f := p.FunderByID(d.FunderID)
		if f == nil {
			return nil, fmt.Errorf("%w: event %s references unknown funder %s", ErrValidation, eventID, d.FunderID)
		}
	}

	soldToOthers := decimal.Zero
	for _, d := range ev.Distributions {
		f := p.FunderByID(d.FunderID)
		switch ev.Type {
		case EventFunding:
			f.PrincipalBalance = f.PrincipalBalance.Sub(d.Amount)
			if f.LenderID != orig.LenderID {
				soldToOthers = soldToOthers.Add(d.Amount)
			}
		case EventPayment:
			f.PrincipalBalance = f.PrincipalBalance.Add(d.Amount)
		}
	}
	if ev.Type == EventFunding && soldToOthers.IsPositive() {
		for i := range p.Funders {
			if p.Funders[i].LenderID == orig.LenderID {
				p.Funders[i].PrincipalBalance = p.Funders[i].PrincipalBalance.Add(soldToOthers)
			}
		}
	}
	RecomputeOwnership(p.Funders)
	syncPrincipal(p)

	p.History = append(p.History[:idx], p.History[idx+1:]...)
	return &ev, nil
}
