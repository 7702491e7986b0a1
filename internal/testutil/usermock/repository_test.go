package usermock

import (
	"context"
	"errors"
	"testing"

	domain "lending-backoffice/internal/domain/user"
)

func TestRepo_Create(t *testing.T) {
	ctx := context.Background()
	u := &domain.User{UserID: "u-1"}

	called := false
	wantErr := errors.New("boom")
	m := &Repo{
		CreateFn: func(gotCtx context.Context, got *domain.User) error {
			called = true
			if gotCtx != ctx {
				t.Fatalf("Create ctx mismatch")
			}
			if got != u {
				t.Fatalf("Create arg mismatch")
			}
			return wantErr
		},
	}
	if err := m.Create(ctx, u); !errors.Is(err, wantErr) {
		t.Fatalf("Create: want %v, got %v", wantErr, err)
	}
	if !called {
		t.Fatalf("CreateFn not called")
	}

	// Default (nil func) → no-op, nil error
	m = &Repo{}
	if err := m.Create(ctx, u); err != nil {
		t.Fatalf("Create default: want nil, got %v", err)
	}
}

func TestRepo_GetByUserID(t *testing.T) {
	ctx := context.Background()
	want := &domain.User{UserID: "u-2", DisplayName: "Dana Officer"}

	m := &Repo{
		GetByUserIDFn: func(gotCtx context.Context, userID string) (*domain.User, error) {
			if userID != "u-2" {
				t.Fatalf("GetByUserID id mismatch: got %s", userID)
			}
			return want, nil
		},
	}
	got, err := m.GetByUserID(ctx, "u-2")
	if err != nil || got != want {
		t.Fatalf("GetByUserID: got %+v, %v", got, err)
	}

	// Default (nil func) → ErrNotFound, so identity tests get the
	// unknown-user path for free
	m = &Repo{}
	got, err = m.GetByUserID(ctx, "u-2")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByUserID default: want ErrNotFound, got %v", err)
	}
	if got != nil {
		t.Fatalf("GetByUserID default: want nil user, got %+v", got)
	}
}
