package lender

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("lender not found")
	ErrConflict          = errors.New("lender modified concurrently")
	ErrValidation        = errors.New("validation failed")
	ErrBackend           = errors.New("backend error")
	ErrInsufficientFunds = errors.New("insufficient trust balance")
)

type EventType string

const (
	EventDeposit             EventType = "Deposit"
	EventWithdrawal          EventType = "Withdrawal"
	EventFundingDisbursement EventType = "Funding Disbursement"
	EventPaymentReceived     EventType = "Payment Received"
	EventFundingReversal     EventType = "Funding Reversal"
	EventPaymentReversal     EventType = "Payment Reversal"
)

// Withdraws reports whether the event type drains the trust balance.
func (t EventType) Withdraws() bool {
	switch t {
	case EventWithdrawal, EventFundingDisbursement, EventPaymentReversal:
		return true
	}
	return false
}

func (t EventType) valid() bool {
	switch t {
	case EventDeposit, EventWithdrawal, EventFundingDisbursement,
		EventPaymentReceived, EventFundingReversal, EventPaymentReversal:
		return true
	}
	return false
}

type TrustAccountEvent struct {
	ID              string          `json:"id"`
	EventType       EventType       `json:"event_type"`
	EventDate       time.Time       `json:"event_date"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"` // always positive
	RelatedLoanID   string          `json:"related_loan_id,omitempty"`
	RelatedLoanCode string          `json:"related_loan_code,omitempty"`
}

// Lender is a funding counterparty independent of any single loan. Its trust
// balance is the authoritative running total; the event list is append-only
// display history that must always replay to the same figure.
type Lender struct {
	ID                 uint64              `gorm:"primaryKey;column:id" json:"-"`
	LenderID           string              `gorm:"size:32;uniqueIndex:ux_lenders_lender_id_active" json:"lender_id"`
	Account            string              `gorm:"size:64" json:"account"`
	LenderName         string              `gorm:"size:191" json:"lender_name"`
	Address            string              `gorm:"size:255" json:"address"`
	PortfolioValue     decimal.Decimal     `gorm:"type:decimal(18,2)" json:"portfolio_value"`
	TrustBalance       decimal.Decimal     `gorm:"type:decimal(18,2)" json:"trust_balance"`
	TrustAccountEvents []TrustAccountEvent `gorm:"serializer:json" json:"trust_account_events,omitempty"`
	Version            uint64              `gorm:"not null;default:1" json:"version"`
	CreatedAt          time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (Lender) TableName() string { return "lenders" }

// Clone deep-copies the lender so speculative mutations never touch the
// snapshot a rollback restores.
func (l *Lender) Clone() *Lender {
	cp := *l
	cp.TrustAccountEvents = append([]TrustAccountEvent(nil), l.TrustAccountEvents...)
	return &cp
}
