package model

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Purchased int       `json:"purchased"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Order struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	CourseID    uuid.UUID      `json:"courseId" gorm:"type:uuid"`
	UserID      uuid.UUID      `json:"userId" gorm:"type:uuid"`
	PaymentInfo map[string]any `json:"payment_info" gorm:"serializer:json"`
	CreatedAt   time.Time      `json:"createdAt"`
}

const NotificationUnread = "unread"

type Notification struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
