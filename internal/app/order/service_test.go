package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/db/memory"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/db/postgres"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/app/order"
	authErrors "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/errors"
	authModel "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/course/model"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/mail"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type mailerStub struct {
	sent []mail.Message
	err  error
}

func (m *mailerStub) Send(_ context.Context, msg mail.Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

type fixture struct {
	svc      order.Service
	db       *gorm.DB
	sessions *memory.SessionCache
	mailer   *mailerStub
	user     authModel.User
	course   model.Course
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&authModel.User{}, &authModel.CourseRef{},
		&model.Course{}, &model.Order{}, &model.Notification{},
	))

	users := postgres.NewPostgresUserRepo(db)
	courses := postgres.NewPostgresCourseRepo(db)
	ctx := context.Background()

	user := authModel.User{ID: uuid.New(), Name: "A", Email: "a@x.com", Role: authModel.RoleUser}
	_, err = users.CreateUser(ctx, user)
	require.NoError(t, err)

	courseID, err := courses.CreateCourse(ctx, model.Course{Name: "Go in Practice", Price: 49})
	require.NoError(t, err)
	course, err := courses.GetCourseByID(ctx, courseID)
	require.NoError(t, err)

	f := &fixture{
		db:       db,
		sessions: memory.NewSessionCache(),
		mailer:   &mailerStub{},
		user:     user,
		course:   course,
	}
	f.svc = order.New(order.Deps{
		Users:         users,
		Sessions:      f.sessions,
		Courses:       courses,
		Orders:        postgres.NewPostgresOrderRepo(db),
		Notifications: postgres.NewPostgresNotificationRepo(db),
		Mailer:        f.mailer,
		Validate:      validator.New(),
	})
	return f
}

func (f *fixture) count(t *testing.T, m any) int64 {
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func TestOrderService_CreateOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.svc.CreateOrder(ctx, f.user.ID, dto.CreateOrderDTO{
		CourseID:    f.course.ID.String(),
		PaymentInfo: map[string]any{"id": "pi_1", "status": "succeeded"},
	})
	require.NoError(t, err)
	require.Equal(t, f.course.ID, o.CourseID)
	require.Equal(t, f.user.ID, o.UserID)

	// заказ создаётся ровно один раз
	require.EqualValues(t, 1, f.count(t, &model.Order{}))

	var n model.Notification
	require.NoError(t, f.db.First(&n).Error)
	require.Equal(t, "New Order", n.Title)
	require.Equal(t, "You have a new order from Go in Practice", n.Message)
	require.Equal(t, model.NotificationUnread, n.Status)

	var c model.Course
	require.NoError(t, f.db.First(&c, "id = ?", f.course.ID).Error)
	require.Equal(t, 1, c.Purchased)

	cached, err := f.sessions.Get(ctx, f.user.ID.String())
	require.NoError(t, err)
	require.True(t, cached.HasCourse(f.course.ID))

	require.Len(t, f.mailer.sent, 1)
	require.Equal(t, mail.TemplateOrderConfirmation, f.mailer.sent[0].Template)
	require.Equal(t, "a@x.com", f.mailer.sent[0].To)
}

func TestOrderService_AlreadyPurchased(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := dto.CreateOrderDTO{CourseID: f.course.ID.String()}

	_, err := f.svc.CreateOrder(ctx, f.user.ID, in)
	require.NoError(t, err)

	_, err = f.svc.CreateOrder(ctx, f.user.ID, in)
	require.True(t, authErrors.IsAlreadyExists(err), "got %v", err)
	require.EqualValues(t, 1, f.count(t, &model.Order{}))
}

func TestOrderService_BadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, f.user.ID, dto.CreateOrderDTO{})
	require.True(t, authErrors.IsInvalidArgument(err))

	_, err = f.svc.CreateOrder(ctx, f.user.ID, dto.CreateOrderDTO{CourseID: "not-a-uuid"})
	require.True(t, authErrors.IsInvalidArgument(err))

	_, err = f.svc.CreateOrder(ctx, f.user.ID, dto.CreateOrderDTO{CourseID: uuid.NewString()})
	require.True(t, authErrors.IsNotFound(err))

	_, err = f.svc.CreateOrder(ctx, uuid.New(), dto.CreateOrderDTO{CourseID: f.course.ID.String()})
	require.True(t, authErrors.IsNotFound(err))

	require.EqualValues(t, 0, f.count(t, &model.Order{}))
}

func TestOrderService_MailFailureDoesNotAbort(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")

	_, err := f.svc.CreateOrder(context.Background(), f.user.ID, dto.CreateOrderDTO{CourseID: f.course.ID.String()})
	require.NoError(t, err)
	require.EqualValues(t, 1, f.count(t, &model.Notification{}))
}
