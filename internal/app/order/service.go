package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/errors"
	authRepo "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/course/model"
	courseRepo "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/course/repo"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/mail"
	lg "github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/log"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, in dto.CreateOrderDTO) (model.Order, error)
}

type Deps struct {
	Users         authRepo.UserRepo
	Sessions      authRepo.SessionCache
	Courses       courseRepo.CourseRepo
	Orders        courseRepo.OrderRepo
	Notifications courseRepo.NotificationRepo
	Mailer        mail.Sender
	Validate      *validator.Validate
	Log           *zap.Logger
}

type orderService struct {
	Deps
	now func() time.Time
}

func New(d Deps) Service {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &orderService{Deps: d, now: time.Now}
}

// CreateOrder runs the purchase steps one after another. Only the lookups
// and the order insert abort the flow; the confirmation mail is best effort.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, in dto.CreateOrderDTO) (model.Order, error) {
	if err := s.Validate.Struct(in); err != nil {
		return model.Order{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := s.Users.GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.Order{}, customErrors.NewNotFound("user not found")
	case err != nil:
		return model.Order{}, customErrors.WrapInternal(err, "GetUserByID")
	}

	courseID, err := uuid.Parse(in.CourseID)
	if err != nil {
		return model.Order{}, customErrors.NewInvalidArgument("invalid course id")
	}
	if user.HasCourse(courseID) {
		return model.Order{}, customErrors.NewAlreadyExists("you have already purchased this course")
	}

	course, err := s.Courses.GetCourseByID(ctx, courseID)
	switch {
	case customErrors.IsNotFound(err):
		return model.Order{}, customErrors.NewNotFound("course not found")
	case err != nil:
		return model.Order{}, customErrors.WrapInternal(err, "GetCourseByID")
	}

	order, err := s.Orders.CreateOrder(ctx, model.Order{
		CourseID:    course.ID,
		UserID:      user.ID,
		PaymentInfo: in.PaymentInfo,
	})
	if err != nil {
		return model.Order{}, customErrors.WrapInternal(err, "CreateOrder")
	}

	err = s.Mailer.Send(ctx, mail.Message{
		To:       user.Email,
		Subject:  "Order Confirmation",
		Template: mail.TemplateOrderConfirmation,
		Data: map[string]any{
			"order": map[string]any{
				"id":    course.ID.String()[:6],
				"name":  course.Name,
				"price": course.Price,
				"date":  s.now().Format("Jan 2, 2006"),
			},
		},
	})
	if err != nil {
		s.Log.Warn("order confirmation mail failed", lg.Email(user.Email), zap.Error(err))
	}

	if err := s.Users.AddCourse(ctx, user.ID, course.ID); err != nil {
		return model.Order{}, customErrors.WrapInternal(err, "AddCourse")
	}

	if err := s.Notifications.CreateNotification(ctx, model.Notification{
		UserID:  user.ID,
		Title:   "New Order",
		Message: fmt.Sprintf("You have a new order from %s", course.Name),
		Status:  model.NotificationUnread,
	}); err != nil {
		return model.Order{}, customErrors.WrapInternal(err, "CreateNotification")
	}

	if err := s.Courses.IncrementPurchased(ctx, course.ID); err != nil {
		return model.Order{}, customErrors.WrapInternal(err, "IncrementPurchased")
	}

	fresh, err := s.Users.GetUserByID(ctx, user.ID)
	if err != nil {
		return model.Order{}, customErrors.WrapInternal(err, "GetUserByID")
	}
	if err := s.Sessions.Set(ctx, fresh); err != nil {
		return model.Order{}, customErrors.WrapInternal(err, "SessionSet")
	}

	s.Log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("course_id", course.ID.String()),
		lg.Email(user.Email),
	)
	return order, nil
}
