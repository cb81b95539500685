package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Avatar struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// CourseRef links a user to a purchased course. The list only grows.
type CourseRef struct {
	UserID    uuid.UUID `json:"-" gorm:"type:uuid;primaryKey"`
	CourseID  uuid.UUID `json:"courseId" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"-"`
}

func (CourseRef) TableName() string { return "user_courses" }

type User struct {
	ID           uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string      `json:"name"`
	Email        string      `json:"email" gorm:"uniqueIndex"`
	PasswordHash string      `json:"-"`
	Role         Role        `json:"role"`
	IsVerified   bool        `json:"isVerified"`
	Avatar       Avatar      `json:"avatar" gorm:"embedded;embeddedPrefix:avatar_"`
	Courses      []CourseRef `json:"courses" gorm:"foreignKey:UserID"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (u User) HasCourse(courseID uuid.UUID) bool {
	for _, c := range u.Courses {
		if c.CourseID == courseID {
			return true
		}
	}
	return false
}

// PendingRegistration only ever lives inside a signed activation token.
type PendingRegistration struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

type ActivationToken struct {
	Token          string `json:"token"`
	ActivationCode string `json:"activationCode"`
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	UserId       uuid.UUID
}
