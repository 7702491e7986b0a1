package lender

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newTestLender() *Lender {
	return &Lender{
		LenderID:     "llllllllllllllllllllllllllllllll",
		Account:      "ACC-1001",
		LenderName:   "Cypress Capital",
		TrustBalance: decimal.Zero,
	}
}

func mustRecord(t *testing.T, l *Lender, in TransactionInput) *TrustAccountEvent {
	t.Helper()
	ev, err := RecordTransaction(l, in)
	if err != nil {
		t.Fatalf("RecordTransaction(%s %s): %v", in.Type, in.Amount, err)
	}
	return ev
}

func day(d int) time.Time { return time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC) }

func TestRecordTransaction_DepositAndWithdrawal(t *testing.T) {
	l := newTestLender()

	ev := mustRecord(t, l, TransactionInput{
		Type: EventDeposit, Date: day(1), Description: "wire in", Amount: decimal.NewFromInt(50_000),
	})
	if len(ev.ID) != 32 {
		t.Fatalf("event id length: %d", len(ev.ID))
	}
	if !l.TrustBalance.Equal(decimal.NewFromInt(50_000)) {
		t.Fatalf("balance after deposit: %s", l.TrustBalance)
	}

	mustRecord(t, l, TransactionInput{
		Type: EventWithdrawal, Date: day(2), Description: "wire out", Amount: decimal.NewFromInt(20_000),
	})
	if !l.TrustBalance.Equal(decimal.NewFromInt(30_000)) {
		t.Fatalf("balance after withdrawal: %s", l.TrustBalance)
	}
	if len(l.TrustAccountEvents) != 2 {
		t.Fatalf("event count: %d", len(l.TrustAccountEvents))
	}
}

func TestRecordTransaction_EventClassification(t *testing.T) {
	deposits := []EventType{EventDeposit, EventPaymentReceived, EventFundingReversal}
	withdrawals := []EventType{EventWithdrawal, EventFundingDisbursement, EventPaymentReversal}

	for _, et := range deposits {
		if et.Withdraws() {
			t.Fatalf("%s must be deposit-class", et)
		}
	}
	for _, et := range withdrawals {
		if !et.Withdraws() {
			t.Fatalf("%s must be withdrawal-class", et)
		}
	}

	l := newTestLender()
	mustRecord(t, l, TransactionInput{Type: EventDeposit, Date: day(1), Description: "seed", Amount: decimal.NewFromInt(10_000)})
	mustRecord(t, l, TransactionInput{Type: EventFundingDisbursement, Date: day(2), Description: "fund loan", Amount: decimal.NewFromInt(4_000)})
	mustRecord(t, l, TransactionInput{Type: EventPaymentReceived, Date: day(3), Description: "borrower payment", Amount: decimal.NewFromInt(500)})
	if !l.TrustBalance.Equal(decimal.NewFromInt(6_500)) {
		t.Fatalf("balance: %s", l.TrustBalance)
	}
}

func TestRecordTransaction_InsufficientFunds(t *testing.T) {
	l := newTestLender()
	mustRecord(t, l, TransactionInput{Type: EventDeposit, Date: day(1), Description: "seed", Amount: decimal.NewFromInt(100)})

	_, err := RecordTransaction(l, TransactionInput{
		Type: EventWithdrawal, Date: day(2), Description: "too much", Amount: decimal.NewFromInt(101),
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	// nothing applied
	if !l.TrustBalance.Equal(decimal.NewFromInt(100)) || len(l.TrustAccountEvents) != 1 {
		t.Fatalf("failed withdrawal must not change state: balance=%s events=%d",
			l.TrustBalance, len(l.TrustAccountEvents))
	}
}

func TestRecordTransaction_Validation(t *testing.T) {
	l := newTestLender()
	cases := []TransactionInput{
		{Type: "Bogus", Date: day(1), Description: "x", Amount: decimal.NewFromInt(1)},
		{Type: EventDeposit, Date: day(1), Description: "x", Amount: decimal.Zero},
		{Type: EventDeposit, Date: day(1), Description: "x", Amount: decimal.NewFromInt(-5)},
		{Type: EventDeposit, Date: day(1), Description: "", Amount: decimal.NewFromInt(1)},
		{Type: EventDeposit, Description: "x", Amount: decimal.NewFromInt(1)},
	}
	for i, in := range cases {
		if _, err := RecordTransaction(l, in); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: want ErrValidation, got %v", i, err)
		}
	}
	if len(l.TrustAccountEvents) != 0 || !l.TrustBalance.IsZero() {
		t.Fatalf("rejected input must not mutate the lender")
	}
}

func TestRecordTransaction_KeepsEventDateOrder(t *testing.T) {
	l := newTestLender()
	mustRecord(t, l, TransactionInput{Type: EventDeposit, Date: day(10), Description: "later", Amount: decimal.NewFromInt(100)})
	mustRecord(t, l, TransactionInput{Type: EventDeposit, Date: day(5), Description: "backdated", Amount: decimal.NewFromInt(100)})
	mustRecord(t, l, TransactionInput{Type: EventDeposit, Date: day(7), Description: "middle", Amount: decimal.NewFromInt(100)})

	for i := 1; i < len(l.TrustAccountEvents); i++ {
		if l.TrustAccountEvents[i].EventDate.Before(l.TrustAccountEvents[i-1].EventDate) {
			t.Fatalf("events out of date order at %d", i)
		}
	}
	if l.TrustAccountEvents[0].Description != "backdated" {
		t.Fatalf("backdated event must sort first, got %q", l.TrustAccountEvents[0].Description)
	}
}

func TestReplayBalance_MatchesRunningBalance(t *testing.T) {
	l := newTestLender()
	mustRecord(t, l, TransactionInput{Type: EventDeposit, Date: day(1), Description: "seed", Amount: decimal.NewFromInt(25_000)})
	mustRecord(t, l, TransactionInput{Type: EventFundingDisbursement, Date: day(2), Description: "fund", Amount: decimal.NewFromInt(10_000)})
	mustRecord(t, l, TransactionInput{Type: EventPaymentReceived, Date: day(3), Description: "pay", Amount: decimal.NewFromInt(1_250)})
	mustRecord(t, l, TransactionInput{Type: EventFundingReversal, Date: day(4), Description: "undo fund", Amount: decimal.NewFromInt(10_000)})
	mustRecord(t, l, TransactionInput{Type: EventPaymentReversal, Date: day(5), Description: "undo pay", Amount: decimal.NewFromInt(1_250)})

	if !ReplayBalance(l).Equal(l.TrustBalance) {
		t.Fatalf("replay %s != stored %s", ReplayBalance(l), l.TrustBalance)
	}
	if !l.TrustBalance.Equal(decimal.NewFromInt(25_000)) {
		t.Fatalf("net balance: %s", l.TrustBalance)
	}
}

func TestClone_IsolatesEvents(t *testing.T) {
	l := newTestLender()
	mustRecord(t, l, TransactionInput{Type: EventDeposit, Date: day(1), Description: "seed", Amount: decimal.NewFromInt(100)})

	cp := l.Clone()
	mustRecord(t, cp, TransactionInput{Type: EventWithdrawal, Date: day(2), Description: "clone only", Amount: decimal.NewFromInt(50)})

	if len(l.TrustAccountEvents) != 1 || !l.TrustBalance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("mutating a clone leaked into the original: events=%d balance=%s",
			len(l.TrustAccountEvents), l.TrustBalance)
	}
	if len(cp.TrustAccountEvents) != 2 || !cp.TrustBalance.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("clone state: events=%d balance=%s", len(cp.TrustAccountEvents), cp.TrustBalance)
	}
}
