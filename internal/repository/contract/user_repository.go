package contract

import (
	"context"

	"knowledgebase-be/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindById(ctx context.Context, id entity.UserID) (*entity.User, error)
	Count(ctx context.Context) (int64, error)
}
