package media

import (
	"context"

	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/model"
	"github.com/google/uuid"
)

// AvatarStore keeps user avatar images in object storage.
type AvatarStore interface {
	Upload(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (model.Avatar, error)
	Delete(ctx context.Context, publicID string) error
}
