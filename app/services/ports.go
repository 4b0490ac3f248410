package services

import (
	"context"

	"github.com/shashiranjanraj/tailorshop/app/models"
)

// UserStore is satisfied by repositories.UserRepository and MemoryUsers.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

type CustomerStore interface {
	FindByMobile(ctx context.Context, mobile string) (*models.Customer, error)
	Create(ctx context.Context, c *models.Customer) error
	Update(ctx context.Context, mobile, code, measurements string) error
	Delete(ctx context.Context, mobile string) error
	All(ctx context.Context) ([]models.Customer, error)
}

type OrderStore interface {
	FindByBillNo(ctx context.Context, billNo string) (*models.Order, error)
	Create(ctx context.Context, o *models.Order) error
	Replace(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, billNo string) error
	DeleteByMobile(ctx context.Context, mobile string) (int64, error)
	All(ctx context.Context) ([]models.Order, error)
	ByMobile(ctx context.Context, mobile string) ([]models.Order, error)
	SearchBillNo(ctx context.Context, fragment string) ([]models.Order, error)
}
