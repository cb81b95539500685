package jwt

import (
	"time"

	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is the payload of both access and refresh tokens: {id: userId}.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

type ActivationClaims struct {
	jwt.RegisteredClaims
	User           model.PendingRegistration `json:"user"`
	ActivationCode string                    `json:"activationCode"`
}

type JWTUtil interface {
	GenerateAccessToken(userID uuid.UUID) (token string, exp time.Time, err error)
	GenerateRefreshToken(userID uuid.UUID) (token string, exp time.Time, err error)
	ValidateAccessToken(token string) (claims SessionClaims, err error)
	ValidateRefreshToken(token string) (claims SessionClaims, err error)
}

type ActivationCodec interface {
	Issue(pending model.PendingRegistration) (model.ActivationToken, error)
	Verify(token, code string) (model.PendingRegistration, error)
}
