package prospect

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

type BorrowerType string

const (
	BorrowerIndividual BorrowerType = "individual"
	BorrowerCompany    BorrowerType = "company"
	BorrowerBoth       BorrowerType = "both"
)

type LoanType string

const (
	LoanPurchase  LoanType = "purchase"
	LoanRefinance LoanType = "refinance"
)

type StageStatus string

const (
	StageLocked     StageStatus = "locked"
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
)

type DocumentStatus string

const (
	DocMissing        DocumentStatus = "missing"
	DocReadyForReview DocumentStatus = "ready_for_review"
	DocApproved       DocumentStatus = "approved"
	DocRejected       DocumentStatus = "rejected"
)

type ClosingCategory string

const (
	CategoryDisclosures ClosingCategory = "disclosures"
	CategoryLoanDocs    ClosingCategory = "loan_docs"
)

type Document struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Status     DocumentStatus  `json:"status"`
	IsCustom   bool            `json:"is_custom"`
	IsOptional bool            `json:"is_optional"`
	Category   ClosingCategory `json:"category,omitempty"`
	// Closing-stage general documents only.
	Sent    bool   `json:"sent,omitempty"`
	Signed  bool   `json:"signed,omitempty"`
	Filled  bool   `json:"filled,omitempty"`
	FileURL string `json:"file_url,omitempty"`
}

// StageDocuments buckets a stage's documents by applicant type. Which buckets
// are populated depends on the stage name and, for Pre-validation, on the
// prospect's borrower type; empty buckets are omitted from JSON.
type StageDocuments struct {
	Individual           []Document `json:"individual,omitempty"`
	Company              []Document `json:"company,omitempty"`
	Property             []Document `json:"property,omitempty"`
	General              []Document `json:"general,omitempty"`
	ClosingFinalApproval []Document `json:"closing_final_approval,omitempty"`
}

type Stage struct {
	ID        int            `json:"id"` // 1-based, defines order
	Name      string         `json:"name"`
	Status    StageStatus    `json:"status"`
	Documents StageDocuments `json:"documents"`
}

type EventType string

const (
	EventFunding EventType = "Funding"
	EventPayment EventType = "Payment"
)

type Distribution struct {
	FunderID string          `json:"funder_id"`
	Amount   decimal.Decimal `json:"amount"`
}

type HistoryEvent struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	DateCreated   time.Time       `json:"date_created"`
	DateReceived  time.Time       `json:"date_received"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Notes         string          `json:"notes,omitempty"`
	CreatedByID   string          `json:"created_by_id,omitempty"`
	CreatedByName string          `json:"created_by_name,omitempty"`
	Distributions []Distribution  `json:"distributions"`
}

type ServicingFees struct {
	CollectsPayments bool            `json:"collects_payments"`
	ChargesFee       bool            `json:"charges_fee"`
	FeePct           decimal.Decimal `json:"fee_pct"` // decimal fraction, e.g. 0.005
}

type Funder struct {
	ID               string          `json:"id"`
	LenderID         string          `json:"lender_id"`
	LenderAccount    string          `json:"lender_account"`
	LenderName       string          `json:"lender_name"` // denormalized at add-time
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	LenderRate       decimal.Decimal `json:"lender_rate"` // decimal fraction
	PrincipalBalance decimal.Decimal `json:"principal_balance"`
	PctOwned         decimal.Decimal `json:"pct_owned"`
	ServicingFees    *ServicingFees  `json:"servicing_fees,omitempty"`
}

type Terms struct {
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	PrincipalBalance decimal.Decimal `json:"principal_balance"`
	NoteRate         decimal.Decimal `json:"note_rate"` // decimal fraction
	ClosingDate      time.Time       `json:"closing_date"`
	MaturityDate     *time.Time      `json:"maturity_date,omitempty"`
	TrustBalance     decimal.Decimal `json:"trust_balance"`
}

// Prospect is the single prospect/loan entity; its meaning changes with Status.
// A completed prospect is a funded loan with Terms, Funders and History
// populated.
type Prospect struct {
	ID               uint64          `gorm:"primaryKey;column:id" json:"-"`
	ProspectID       string          `gorm:"size:32;uniqueIndex:ux_prospects_prospect_id_active" json:"prospect_id"`
	Code             string          `gorm:"size:32;uniqueIndex:ux_prospects_code_active" json:"code"`
	BorrowerName     string          `gorm:"size:191" json:"borrower_name"`
	BorrowerType     BorrowerType    `gorm:"size:16" json:"borrower_type"`
	LoanType         LoanType        `gorm:"size:16" json:"loan_type"`
	LoanAmount       decimal.Decimal `gorm:"type:decimal(18,2)" json:"loan_amount"`
	AssignedTo       string          `gorm:"size:32;index:idx_prospects_assigned" json:"assigned_to"`
	AssignedToName   string          `gorm:"size:191" json:"assigned_to_name"`
	Status           Status          `gorm:"size:16;index:idx_prospects_status" json:"status"`
	RejectedAtStage  *int            `json:"rejected_at_stage,omitempty"`
	CurrentStage     int             `json:"current_stage"`
	CurrentStageName string          `gorm:"size:64" json:"current_stage_name"`
	Stages           []Stage         `gorm:"serializer:json" json:"stages"`
	Terms            *Terms          `gorm:"serializer:json" json:"terms,omitempty"`
	Funders          []Funder        `gorm:"serializer:json" json:"funders,omitempty"`
	History          []HistoryEvent  `gorm:"serializer:json" json:"history,omitempty"`
	Properties       datatypes.JSON  `json:"properties,omitempty"`
	CoBorrowers      datatypes.JSON  `json:"co_borrowers,omitempty"`
	BorrowerDetails  datatypes.JSON  `json:"borrower_details,omitempty"`
	Version          uint64          `gorm:"not null;default:1" json:"version"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Prospect) TableName() string { return "prospects" }

// ActiveStage returns the stage currently in progress, or nil when the
// prospect is in a terminal status.
func (p *Prospect) ActiveStage() *Stage {
	for i := range p.Stages {
		if p.Stages[i].Status == StageInProgress {
			return &p.Stages[i]
		}
	}
	return nil
}

func (p *Prospect) StageByID(stageID int) *Stage {
	for i := range p.Stages {
		if p.Stages[i].ID == stageID {
			return &p.Stages[i]
		}
	}
	return nil
}

func (p *Prospect) FunderByID(funderID string) *Funder {
	for i := range p.Funders {
		if p.Funders[i].ID == funderID {
			return &p.Funders[i]
		}
	}
	return nil
}

func (p *Prospect) EventByID(eventID string) *HistoryEvent {
	for i := range p.History {
		if p.History[i].ID == eventID {
			return &p.History[i]
		}
	}
	return nil
}

// Bucket resolves a bucket key to the backing slice so callers can append.
// Returns nil for an unknown key.
func (sd *StageDocuments) Bucket(key string) *[]Document {
	switch key {
	case "individual":
		return &sd.Individual
	case "company":
		return &sd.Company
	case "property":
		return &sd.Property
	case "general":
		return &sd.General
	case "closing_final_approval":
		return &sd.ClosingFinalApproval
	}
	return nil
}

// FindDocument searches every bucket of the stage for a document id.
func (s *Stage) FindDocument(docID string) *Document {
	buckets := []*[]Document{
		&s.Documents.Individual,
		&s.Documents.Company,
		&s.Documents.Property,
		&s.Documents.General,
		&s.Documents.ClosingFinalApproval,
	}
	for _, b := range buckets {
		for i := range *b {
			if (*b)[i].ID == docID {
				return &(*b)[i]
			}
		}
	}
	return nil
}

// Clone deep-copies the entity. The orchestrator mutates clones only, so a
// rejected persist can restore the untouched original.
func (p *Prospect) Clone() *Prospect {
	cp := *p
	cp.Stages = make([]Stage, len(p.Stages))
	for i, st := range p.Stages {
		cp.Stages[i] = st
		cp.Stages[i].Documents = StageDocuments{
			Individual:           cloneDocs(st.Documents.Individual),
			Company:              cloneDocs(st.Documents.Company),
			Property:             cloneDocs(st.Documents.Property),
			General:              cloneDocs(st.Documents.General),
			ClosingFinalApproval: cloneDocs(st.Documents.ClosingFinalApproval),
		}
	}
	if p.Terms != nil {
		t := *p.Terms
		if p.Terms.MaturityDate != nil {
			d := *p.Terms.MaturityDate
			t.MaturityDate = &d
		}
		cp.Terms = &t
	}
	if p.Funders != nil {
		cp.Funders = make([]Funder, len(p.Funders))
		for i, f := range p.Funders {
			cp.Funders[i] = f
			if f.ServicingFees != nil {
				sf := *f.ServicingFees
				cp.Funders[i].ServicingFees = &sf
			}
		}
	}
	if p.History != nil {
		cp.History = make([]HistoryEvent, len(p.History))
		for i, ev := range p.History {
			cp.History[i] = ev
			cp.History[i].Distributions = append([]Distribution(nil), ev.Distributions...)
		}
	}
	if p.RejectedAtStage != nil {
		n := *p.RejectedAtStage
		cp.RejectedAtStage = &n
	}
	cp.Properties = append(datatypes.JSON(nil), p.Properties...)
	cp.CoBorrowers = append(datatypes.JSON(nil), p.CoBorrowers...)
	cp.BorrowerDetails = append(datatypes.JSON(nil), p.BorrowerDetails...)
	return &cp
}

func cloneDocs(in []Document) []Document {
	if in == nil {
		return nil
	}
	return append([]Document(nil), in...)
}
