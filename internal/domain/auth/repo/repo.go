package repo

import (
	"context"

	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/model"
	"github.com/google/uuid"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u model.User) (uuid.UUID, error)

	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)

	UpdateUser(ctx context.Context, u model.User) error

	AddCourse(ctx context.Context, userID, courseID uuid.UUID) error
}

// SessionCache maps a user id to the latest serialized user snapshot.
// Get returns ErrSessionNotFound when the key is absent.
type SessionCache interface {
	Get(ctx context.Context, userID string) (model.User, error)

	Set(ctx context.Context, user model.User) error

	Del(ctx context.Context, userID string) error
}
