package prospect

import (
	"time"

	"github.com/shopspring/decimal"

	"lending-backoffice/pkg/id"
)

// OriginatorIdentity is the fixed in-house lender that initially funds every
// loan before participation is sold to third parties. It comes from
// configuration and is stamped into the funders/history a conversion creates.
type OriginatorIdentity struct {
	LenderID string
	Account  string
	Name     string
}

// requiredDocuments gathers the documents that gate a stage: the borrower-type
// branches plus property docs for Pre-validation, the general bucket (and
// final approval, for Closing) everywhere else.
func requiredDocuments(p *Prospect, st *Stage) []Document {
	if st.Name == StagePrevalidation {
		var out []Document
		if p.BorrowerType == BorrowerIndividual || p.BorrowerType == BorrowerBoth {
			out = append(out, st.Documents.Individual...)
		}
		if p.BorrowerType == BorrowerCompany || p.BorrowerType == BorrowerBoth {
			out = append(out, st.Documents.Company...)
		}
		return append(out, st.Documents.Property...)
	}
	out := append([]Document(nil), st.Documents.General...)
	if st.Name == StageClosing {
		out = append(out, st.Documents.ClosingFinalApproval...)
	}
	return out
}

// DeriveClosingStatus syncs a closing document's status with its
// sent/signed/filled booleans: approved once all three are set, back to
// missing if one drops while approved. Other statuses (e.g. rejected) are left
// alone.
func DeriveClosingStatus(d *Document) {
	all := d.Sent && d.Signed && d.Filled
	switch {
	case all:
		d.Status = DocApproved
	case d.Status == DocApproved:
		d.Status = DocMissing
	}
}

// CheckAndAdvance inspects the active stage and, when every non-optional
// required document is approved, completes it: either promoting the next stage
// or, past the last stage, converting the prospect into a funded loan with
// terms, the originator funder and the initial funding event dated today.
// Terminal prospects and stages with no defined documents are left unchanged.
func CheckAndAdvance(p *Prospect, orig OriginatorIdentity, today time.Time) {
	if p.Status != StatusInProgress {
		return
	}
	active := p.ActiveStage()
	if active == nil {
		return
	}
	required := requiredDocuments(p, active)
	if len(required) == 0 {
		// a stage with no defined documents can never auto-complete
		return
	}
	for _, d := range required {
		if d.IsOptional {
			continue
		}
		if d.Status != DocApproved {
			return
		}
	}

	active.Status = StageCompleted
	if active.ID >= len(p.Stages) {
		convertToLoan(p, orig, today)
		return
	}
	next := p.StageByID(active.ID + 1)
	next.Status = StageInProgress
	p.CurrentStage = next.ID
	p.CurrentStageName = next.Name
}

func convertToLoan(p *Prospect, orig OriginatorIdentity, today time.Time) {
	last := p.Stages[len(p.Stages)-1]
	p.Status = StatusCompleted
	p.CurrentStage = last.ID
	p.CurrentStageName = last.Name

	noteRate := decimal.Zero
	if p.Terms != nil {
		noteRate = p.Terms.NoteRate
	}
	p.Terms = &Terms{
		OriginalAmount:   p.LoanAmount,
		PrincipalBalance: p.LoanAmount,
		NoteRate:         noteRate,
		ClosingDate:      today,
		TrustBalance:     decimal.Zero,
	}

	originator := Funder{
		ID:               id.NewID32(),
		LenderID:         orig.LenderID,
		LenderAccount:    orig.Account,
		LenderName:       orig.Name,
		OriginalAmount:   p.LoanAmount,
		LenderRate:       noteRate,
		PrincipalBalance: p.LoanAmount,
		PctOwned:         decimal.NewFromInt(1),
	}
	p.Funders = []Funder{originator}

	p.History = []HistoryEvent{{
		ID:           id.NewID32(),
		Type:         EventFunding,
		DateCreated:  today,
		DateReceived: today,
		TotalAmount:  p.LoanAmount,
		Notes:        "Initial funding at closing",
		Distributions: []Distribution{
			{FunderID: originator.ID, Amount: p.LoanAmount},
		},
	}}
}
