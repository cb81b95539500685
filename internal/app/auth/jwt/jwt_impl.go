package jwt

import (
	"errors"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/errors"
	jwt2 "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JwtUtilImpl signs access and refresh tokens with two distinct HMAC secrets.
type JwtUtilImpl struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewJWTUtil(cfg *config.Config) (*JwtUtilImpl, error) {
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, customErrors.WrapInternal(errors.New("empty secret"), "NewJWTUtil")
	}
	return &JwtUtilImpl{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		now:           time.Now,
	}, nil
}

func (j *JwtUtilImpl) GenerateAccessToken(userID uuid.UUID) (string, time.Time, error) {
	token, exp, err := j.sign(userID, j.accessSecret, j.accessTTL)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign access token")
	}
	return token, exp, nil
}

func (j *JwtUtilImpl) GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error) {
	token, exp, err := j.sign(userID, j.refreshSecret, j.refreshTTL)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign refresh token")
	}
	return token, exp, nil
}

func (j *JwtUtilImpl) ValidateAccessToken(raw string) (jwt2.SessionClaims, error) {
	return j.validate(raw, j.accessSecret)
}

func (j *JwtUtilImpl) ValidateRefreshToken(raw string) (jwt2.SessionClaims, error) {
	return j.validate(raw, j.refreshSecret)
}

func (j *JwtUtilImpl) sign(userID uuid.UUID, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := j.now()
	claims := jwt2.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID.String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, claims.ExpiresAt.Time, nil
}

func (j *JwtUtilImpl) validate(raw string, secret []byte) (jwt2.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt2.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(j.now))

	if err != nil || !token.Valid {
		return jwt2.SessionClaims{}, customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt2.SessionClaims)
	if !ok {
		return jwt2.SessionClaims{}, customErrors.WrapInternal(
			errors.New("claims not SessionClaims"), "validate",
		)
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return jwt2.SessionClaims{}, customErrors.ErrInvalidToken
	}

	return *claims, nil
}
