package user

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("user not found")

// User is a back-office operator: the assignee on prospects and the author
// stamped onto history events.
type User struct {
	ID          uint64         `gorm:"primaryKey;column:id" json:"-"`
	UserID      string         `gorm:"size:32;uniqueIndex:ux_users_user_id_active" json:"user_id"`
	DisplayName string         `gorm:"size:191" json:"display_name"`
	Email       string         `gorm:"size:191" json:"email"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByUserID(ctx context.Context, userID string) (*User, error)
}

type ctxKey struct{}

// NewContext stamps the acting user onto the request context.
func NewContext(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext returns the acting user, if the identity middleware resolved one.
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}
