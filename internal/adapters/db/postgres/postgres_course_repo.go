package postgres

import (
	"context"
	"errors"

	customErrors "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/course/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresCourseRepo struct {
	db *gorm.DB
}

func NewPostgresCourseRepo(db *gorm.DB) *PostgresCourseRepo {
	return &PostgresCourseRepo{db: db}
}

func (p *PostgresCourseRepo) CreateCourse(ctx context.Context, c model.Course) (uuid.UUID, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if err := p.db.WithContext(ctx).Create(&c).Error; err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, customErrors.ErrAlreadyExists
		}
		return uuid.Nil, customErrors.WrapInternal(err, "CreateCourse")
	}
	return c.ID, nil
}

func (p *PostgresCourseRepo) GetCourseByID(ctx context.Context, id uuid.UUID) (model.Course, error) {
	var c model.Course
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&c)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Course{}, customErrors.NewNotFound("course not found")
	}
	if err := res.Error; err != nil {
		return model.Course{}, customErrors.WrapInternal(err, "GetCourseByID")
	}
	return c, nil
}

// IncrementPurchased bumps the counter in one statement so concurrent
// purchases are not lost.
func (p *PostgresCourseRepo) IncrementPurchased(ctx context.Context, id uuid.UUID) error {
	res := p.db.WithContext(ctx).Model(&model.Course{}).
		Where("id = ?", id).
		UpdateColumn("purchased", gorm.Expr("purchased + ?", 1))
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "IncrementPurchased")
	}
	if res.RowsAffected == 0 {
		return customErrors.NewNotFound("course not found")
	}
	return nil
}

type PostgresOrderRepo struct {
	db *gorm.DB
}

func NewPostgresOrderRepo(db *gorm.DB) *PostgresOrderRepo {
	return &PostgresOrderRepo{db: db}
}

func (p *PostgresOrderRepo) CreateOrder(ctx context.Context, o model.Order) (model.Order, error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if err := p.db.WithContext(ctx).Create(&o).Error; err != nil {
		return model.Order{}, customErrors.WrapInternal(err, "CreateOrder")
	}
	return o, nil
}

type PostgresNotificationRepo struct {
	db *gorm.DB
}

func NewPostgresNotificationRepo(db *gorm.DB) *PostgresNotificationRepo {
	return &PostgresNotificationRepo{db: db}
}

func (p *PostgresNotificationRepo) CreateNotification(ctx context.Context, n model.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Status == "" {
		n.Status = model.NotificationUnread
	}
	if err := p.db.WithContext(ctx).Create(&n).Error; err != nil {
		return customErrors.WrapInternal(err, "CreateNotification")
	}
	return nil
}
