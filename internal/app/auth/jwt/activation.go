package jwt

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"math/big"
	"strconv"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/errors"
	jwt2 "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/model"
	"github.com/golang-jwt/jwt/v5"
)

const (
	codeMin = 1000
	codeMax = 9999
)

// ActivationCodec issues stateless activation tokens: the pending registration
// and its one-time code travel inside the signature, nothing is stored.
type ActivationCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewActivationCodec(secret string, ttl time.Duration) (*ActivationCodec, error) {
	if secret == "" {
		return nil, customErrors.WrapInternal(errors.New("empty secret"), "NewActivationCodec")
	}
	return &ActivationCodec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (a *ActivationCodec) Issue(pending model.PendingRegistration) (model.ActivationToken, error) {
	code, err := activationCode()
	if err != nil {
		return model.ActivationToken{}, customErrors.WrapInternal(err, "activation code")
	}

	now := a.now()
	claims := jwt2.ActivationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		User:           pending,
		ActivationCode: code,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return model.ActivationToken{}, customErrors.WrapInternal(err, "sign activation token")
	}

	return model.ActivationToken{Token: signed, ActivationCode: code}, nil
}

func (a *ActivationCodec) Verify(raw, code string) (model.PendingRegistration, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt2.ActivationClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return a.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(a.now))

	if err != nil || !token.Valid {
		return model.PendingRegistration{}, customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt2.ActivationClaims)
	if !ok {
		return model.PendingRegistration{}, customErrors.WrapInternal(
			errors.New("claims not ActivationClaims"), "Verify",
		)
	}

	if subtle.ConstantTimeCompare([]byte(claims.ActivationCode), []byte(code)) != 1 {
		return model.PendingRegistration{}, customErrors.ErrCodeMismatch
	}

	return claims.User, nil
}

// activationCode draws uniformly from [1000, 9999].
func activationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}
