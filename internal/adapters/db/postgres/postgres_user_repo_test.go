package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/model"
	courseModel "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/course/model"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.CourseRef{},
		&courseModel.Course{},
		&courseModel.Order{},
		&courseModel.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestPostgresUserRepo_CRUD(t *testing.T) {
	repo := NewPostgresUserRepo(setupDB(t))
	ctx := context.Background()
	user := model.User{
		ID: uuid.New(), Email: "e@e", Name: "u", PasswordHash: "h",
		Role: model.RoleUser, CreatedAt: time.Now(),
	}
	id, err := repo.CreateUser(ctx, user)
	if err != nil || id != user.ID {
		t.Fatalf("create %v", err)
	}
	got, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil || got.ID != user.ID || got.PasswordHash != "h" {
		t.Fatalf("get by email %v", err)
	}

	got.Name = "renamed"
	got.Avatar = model.Avatar{PublicID: "avatars/x", URL: "https://cdn/avatars/x"}
	if err := repo.UpdateUser(ctx, got); err != nil {
		t.Fatalf("update %v", err)
	}
	got2, err := repo.GetUserByID(ctx, user.ID)
	if err != nil || got2.Name != "renamed" || got2.Avatar.URL != "https://cdn/avatars/x" {
		t.Fatalf("get by id %v %+v", err, got2)
	}

	if _, err := repo.GetUserByID(ctx, uuid.New()); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := repo.GetUserByEmail(ctx, "nobody@e"); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgresUserRepo_DuplicateEmail(t *testing.T) {
	repo := NewPostgresUserRepo(setupDB(t))
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, model.User{ID: uuid.New(), Email: "dup@e"}); err != nil {
		t.Fatalf("create %v", err)
	}
	_, err := repo.CreateUser(ctx, model.User{ID: uuid.New(), Email: "dup@e"})
	if !errors.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestPostgresUserRepo_UpdateMissing(t *testing.T) {
	repo := NewPostgresUserRepo(setupDB(t))

	err := repo.UpdateUser(context.Background(), model.User{ID: uuid.New(), Email: "ghost@e"})
	if !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgresUserRepo_AddCourse(t *testing.T) {
	repo := NewPostgresUserRepo(setupDB(t))
	ctx := context.Background()
	user := model.User{ID: uuid.New(), Email: "c@e"}
	if _, err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create %v", err)
	}

	courseID := uuid.New()
	if err := repo.AddCourse(ctx, user.ID, courseID); err != nil {
		t.Fatalf("add course %v", err)
	}
	// повторная покупка не должна дублировать запись
	if err := repo.AddCourse(ctx, user.ID, courseID); err != nil {
		t.Fatalf("add course twice %v", err)
	}

	got, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get %v", err)
	}
	if len(got.Courses) != 1 || !got.HasCourse(courseID) {
		t.Fatalf("courses %+v", got.Courses)
	}
}

func TestPostgresCourseRepo_Purchase(t *testing.T) {
	db := setupDB(t)
	courses := NewPostgresCourseRepo(db)
	orders := NewPostgresOrderRepo(db)
	notifications := NewPostgresNotificationRepo(db)
	ctx := context.Background()

	id, err := courses.CreateCourse(ctx, courseModel.Course{Name: "Go", Price: 10})
	if err != nil {
		t.Fatalf("create course %v", err)
	}
	if err := courses.IncrementPurchased(ctx, id); err != nil {
		t.Fatalf("increment %v", err)
	}
	if err := courses.IncrementPurchased(ctx, id); err != nil {
		t.Fatalf("increment %v", err)
	}
	c, err := courses.GetCourseByID(ctx, id)
	if err != nil || c.Purchased != 2 {
		t.Fatalf("course %v %+v", err, c)
	}

	if err := courses.IncrementPurchased(ctx, uuid.New()); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := courses.GetCourseByID(ctx, uuid.New()); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	o, err := orders.CreateOrder(ctx, courseModel.Order{
		CourseID: id, UserID: uuid.New(), PaymentInfo: map[string]any{"id": "pi_1"},
	})
	if err != nil || o.ID == uuid.Nil {
		t.Fatalf("order %v", err)
	}
	var stored courseModel.Order
	if err := db.First(&stored, "id = ?", o.ID).Error; err != nil {
		t.Fatalf("load order %v", err)
	}
	if stored.PaymentInfo["id"] != "pi_1" {
		t.Fatalf("payment info %+v", stored.PaymentInfo)
	}

	if err := notifications.CreateNotification(ctx, courseModel.Notification{
		UserID: o.UserID, Title: "New Order", Message: "m",
	}); err != nil {
		t.Fatalf("notification %v", err)
	}
	var n courseModel.Notification
	if err := db.First(&n).Error; err != nil || n.Status != courseModel.NotificationUnread {
		t.Fatalf("stored notification %v %+v", err, n)
	}
}
