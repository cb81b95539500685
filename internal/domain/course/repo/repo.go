package repo

import (
	"context"

	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/course/model"
	"github.com/google/uuid"
)

type CourseRepo interface {
	CreateCourse(ctx context.Context, c model.Course) (uuid.UUID, error)

	GetCourseByID(ctx context.Context, id uuid.UUID) (model.Course, error)

	IncrementPurchased(ctx context.Context, id uuid.UUID) error
}

type OrderRepo interface {
	CreateOrder(ctx context.Context, o model.Order) (model.Order, error)
}

type NotificationRepo interface {
	CreateNotification(ctx context.Context, n model.Notification) error
}
