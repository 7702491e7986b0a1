package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	domain "lending-backoffice/internal/domain/prospect"
	"lending-backoffice/pkg/id"
)

// --- SQLite-friendly schema only for tests (no DECIMAL/JSON column types) ---

type prospectSQLite struct {
	ID               uint64         `gorm:"primaryKey;column:id"`
	ProspectID       string         `gorm:"size:32;column:prospect_id"`
	Code             string         `gorm:"size:32;column:code"`
	BorrowerName     string         `gorm:"column:borrower_name"`
	BorrowerType     string         `gorm:"column:borrower_type"`
	LoanType         string         `gorm:"column:loan_type"`
	LoanAmount       string         `gorm:"column:loan_amount"`
	AssignedTo       string         `gorm:"column:assigned_to"`
	AssignedToName   string         `gorm:"column:assigned_to_name"`
	Status           string         `gorm:"column:status"`
	RejectedAtStage  *int           `gorm:"column:rejected_at_stage"`
	CurrentStage     int            `gorm:"column:current_stage"`
	CurrentStageName string         `gorm:"column:current_stage_name"`
	Stages           string         `gorm:"type:text;column:stages"`
	Terms            *string        `gorm:"type:text;column:terms"`
	Funders          *string        `gorm:"type:text;column:funders"`
	History          *string        `gorm:"type:text;column:history"`
	Properties       *string        `gorm:"type:text;column:properties"`
	CoBorrowers      *string        `gorm:"type:text;column:co_borrowers"`
	BorrowerDetails  *string        `gorm:"type:text;column:borrower_details"`
	Version          uint64         `gorm:"column:version"`
	CreatedAt        time.Time      `gorm:"column:created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (prospectSQLite) TableName() string { return "prospects" }

// openTestDB creates an in-memory sqlite DB and migrates ONLY the sqlite-safe schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&prospectSQLite{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeProspect(prospectID, code string) *domain.Prospect {
	return &domain.Prospect{
		ProspectID:       prospectID,
		Code:             code,
		BorrowerName:     "Jordan Fields",
		BorrowerType:     domain.BorrowerIndividual,
		LoanType:         domain.LoanPurchase,
		LoanAmount:       decimal.NewFromInt(250_000),
		Status:           domain.StatusInProgress,
		CurrentStage:     1,
		CurrentStageName: domain.StagePrevalidation,
		Stages:           domain.NewStages(domain.BorrowerIndividual, domain.LoanPurchase),
		Version:          1,
	}
}

func TestProspectCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewProspectRepository(db)
	ctx := context.Background()

	pid := id.NewID32()
	p := makeProspect(pid, "P-ONE")
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByProspectID(ctx, pid)
	if err != nil {
		t.Fatalf("GetByProspectID: %v", err)
	}
	if got.Code != "P-ONE" || got.BorrowerName != "Jordan Fields" {
		t.Errorf("unexpected prospect: %+v", got)
	}
	// serialized workflow survives the round trip
	if len(got.Stages) != 6 || got.Stages[0].Name != domain.StagePrevalidation {
		t.Fatalf("stages round trip: %d", len(got.Stages))
	}
	if len(got.Stages[0].Documents.Individual) == 0 {
		t.Fatalf("stage documents lost in round trip")
	}
	if !got.LoanAmount.Equal(decimal.NewFromInt(250_000)) {
		t.Fatalf("loan amount round trip: %s", got.LoanAmount)
	}
}

func TestProspectGetByCode(t *testing.T) {
	db := openTestDB(t)
	repo := NewProspectRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, makeProspect(id.NewID32(), "P-CODE")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetByCode(ctx, "P-CODE")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if got.Code != "P-CODE" {
		t.Fatalf("code: %s", got.Code)
	}
	if _, err := repo.GetByCode(ctx, "P-NOPE"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("missing code: %v", err)
	}
}

func TestProspectList_Filters(t *testing.T) {
	db := openTestDB(t)
	repo := NewProspectRepository(db)
	ctx := context.Background()

	a := makeProspect(id.NewID32(), "P-A")
	a.AssignedTo = "useraaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	b := makeProspect(id.NewID32(), "P-B")
	b.Status = domain.StatusRejected
	for _, p := range []*domain.Prospect{a, b} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := repo.List(ctx, domain.ListFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("List all: n=%d err=%v", len(all), err)
	}

	rejected, err := repo.List(ctx, domain.ListFilter{Status: domain.StatusRejected})
	if err != nil || len(rejected) != 1 || rejected[0].Code != "P-B" {
		t.Fatalf("List by status: %+v err=%v", rejected, err)
	}

	mine, err := repo.List(ctx, domain.ListFilter{AssignedTo: a.AssignedTo})
	if err != nil || len(mine) != 1 || mine[0].Code != "P-A" {
		t.Fatalf("List by assignee: %+v err=%v", mine, err)
	}
}

func TestProspectUpdateIfVersionMatches(t *testing.T) {
	db := openTestDB(t)
	repo := NewProspectRepository(db)
	ctx := context.Background()

	pid := id.NewID32()
	p := makeProspect(pid, "P-VER")
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	next := p.Clone()
	next.BorrowerName = "Morgan Fields"
	next.Terms = &domain.Terms{
		OriginalAmount:   decimal.NewFromInt(250_000),
		PrincipalBalance: decimal.NewFromInt(250_000),
		ClosingDate:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	confirmed, err := repo.UpdateIfVersionMatches(ctx, next, 1)
	if err != nil {
		t.Fatalf("UpdateIfVersionMatches: %v", err)
	}
	if confirmed.Version != 2 {
		t.Fatalf("confirmed version: %d", confirmed.Version)
	}
	if confirmed.BorrowerName != "Morgan Fields" || confirmed.Terms == nil {
		t.Fatalf("update lost fields: %+v", confirmed)
	}
	if !confirmed.Terms.PrincipalBalance.Equal(decimal.NewFromInt(250_000)) {
		t.Fatalf("terms round trip: %s", confirmed.Terms.PrincipalBalance)
	}
}

func TestProspectUpdateIfVersionMatches_Conflict(t *testing.T) {
	db := openTestDB(t)
	repo := NewProspectRepository(db)
	ctx := context.Background()

	pid := id.NewID32()
	p := makeProspect(pid, "P-CONF")
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// first writer wins
	if _, err := repo.UpdateIfVersionMatches(ctx, p.Clone(), 1); err != nil {
		t.Fatalf("first update: %v", err)
	}

	// second writer still holds version 1 and must lose
	stale := p.Clone()
	stale.BorrowerName = "Stale Writer"
	if _, err := repo.UpdateIfVersionMatches(ctx, stale, 1); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}

	got, err := repo.GetByProspectID(ctx, pid)
	if err != nil {
		t.Fatalf("GetByProspectID: %v", err)
	}
	if got.BorrowerName == "Stale Writer" {
		t.Fatalf("stale write must not land")
	}
}

func TestProspectGet_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewProspectRepository(db)
	if _, err := repo.GetByProspectID(context.Background(), id.NewID32()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}
}
