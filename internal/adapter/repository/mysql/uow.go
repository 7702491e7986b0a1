package mysql

import (
	"context"

	"gorm.io/gorm"

	"lending-backoffice/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := uow.Repos{
			Prospects: &ProspectRepository{db: tx},
			Lenders:   &LenderRepository{db: tx},
			Users:     &UserRepository{db: tx},
		}
		return fn(r)
	})
}
