package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"lending-backoffice/internal/domain/user"
	"lending-backoffice/internal/session"
	"lending-backoffice/internal/testutil/usermock"
)

func setupIdentityEcho(users user.Repository, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(Identity(users))
	e.GET("/prospects", handler)
	return e
}

func Test_Identity_Anonymous_WhenHeaderAbsent(t *testing.T) {
	users := &usermock.Repo{}
	var got *session.Session
	e := setupIdentityEcho(users, func(c echo.Context) error {
		got, _ = c.Get(session.ContextKey).(*session.Session)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/prospects", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if got == nil || got.UserID != "" {
		t.Fatalf("expected anonymous session, got %+v", got)
	}
}

func Test_Identity_RejectsMalformedHeader(t *testing.T) {
	users := &usermock.Repo{}
	e := setupIdentityEcho(users, func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/prospects", nil)
	req.Header.Set("Ax-User-Id", "not-a-hex-id")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed Ax-User-Id => want 400, got %d", rec.Code)
	}
}

func Test_Identity_UnknownUser(t *testing.T) {
	users := &usermock.Repo{
		GetByUserIDFn: func(ctx context.Context, userID string) (*user.User, error) {
			return nil, user.ErrNotFound
		},
	}
	e := setupIdentityEcho(users, func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/prospects", nil)
	req.Header.Set("Ax-User-Id", strings.Repeat("a", 32))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user => want 401, got %d", rec.Code)
	}
}

func Test_Identity_ResolvesUser_ContextAndSession(t *testing.T) {
	uid := strings.Repeat("a", 32)
	users := &usermock.Repo{
		GetByUserIDFn: func(ctx context.Context, userID string) (*user.User, error) {
			if userID != uid {
				t.Fatalf("lookup id mismatch: %s", userID)
			}
			return &user.User{UserID: uid, DisplayName: "Dana Officer"}, nil
		},
	}

	var sess *session.Session
	var ctxUser user.User
	var ctxOK bool
	e := setupIdentityEcho(users, func(c echo.Context) error {
		sess, _ = c.Get(session.ContextKey).(*session.Session)
		ctxUser, ctxOK = user.FromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/prospects", nil)
	req.Header.Set("Ax-User-Id", uid)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if !ctxOK || ctxUser.UserID != uid || ctxUser.DisplayName != "Dana Officer" {
		t.Fatalf("acting user not on context: ok=%v user=%+v", ctxOK, ctxUser)
	}
	if sess == nil || sess.UserID != uid || sess.UserName != "Dana Officer" {
		t.Fatalf("session not stamped: %+v", sess)
	}
}
