package jwt

import (
	"testing"
	"time"

	authErrors "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func testConfig() *config.Config {
	return &config.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     5 * time.Minute,
		RefreshTokenTTL:    72 * time.Hour,
	}
}

func TestJWTUtil_GenerateValidate(t *testing.T) {
	util, err := NewJWTUtil(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	uid := uuid.New()
	token, exp, err := util.GenerateAccessToken(uid)
	if err != nil || exp.IsZero() {
		t.Fatalf("bad generate: %v", err)
	}
	claims, err := util.ValidateAccessToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != uid.String() {
		t.Fatalf("want %s got %s", uid, claims.UserID)
	}
}

func TestJWTUtil_Lifetimes(t *testing.T) {
	util, _ := NewJWTUtil(testConfig())
	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	util.now = func() time.Time { return fixed }

	_, accExp, _ := util.GenerateAccessToken(uuid.New())
	_, refExp, _ := util.GenerateRefreshToken(uuid.New())

	if got := accExp.Sub(fixed); got != 5*time.Minute {
		t.Fatalf("access lifetime %v", got)
	}
	if got := refExp.Sub(fixed); got != 72*time.Hour {
		t.Fatalf("refresh lifetime %v", got)
	}
}

func TestJWTUtil_ForeignSecretRejected(t *testing.T) {
	util, _ := NewJWTUtil(testConfig())
	otherCfg := testConfig()
	otherCfg.AccessTokenSecret = "someone-else"
	other, _ := NewJWTUtil(otherCfg)

	for i := 0; i < 5; i++ {
		tok, _, _ := other.GenerateAccessToken(uuid.New())
		if _, err := util.ValidateAccessToken(tok); !authErrors.IsInvalidToken(err) {
			t.Fatalf("foreign token accepted: %v", err)
		}
	}
}

func TestJWTUtil_AccessAndRefreshNotInterchangeable(t *testing.T) {
	util, _ := NewJWTUtil(testConfig())
	uid := uuid.New()

	acc, _, _ := util.GenerateAccessToken(uid)
	ref, _, _ := util.GenerateRefreshToken(uid)

	if _, err := util.ValidateRefreshToken(acc); err == nil {
		t.Fatal("access token must not pass as refresh token")
	}
	if _, err := util.ValidateAccessToken(ref); err == nil {
		t.Fatal("refresh token must not pass as access token")
	}
	cl, err := util.ValidateRefreshToken(ref)
	if err != nil || cl.UserID != uid.String() {
		t.Fatalf("validate refresh: %v", err)
	}
}

func TestJWTUtil_Expired(t *testing.T) {
	util, _ := NewJWTUtil(testConfig())
	util.now = func() time.Time { return time.Now().Add(-6 * time.Minute) }
	tok, _, _ := util.GenerateAccessToken(uuid.New())

	util.now = time.Now
	if _, err := util.ValidateAccessToken(tok); !authErrors.IsInvalidToken(err) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestJWTUtil_InvalidAlg(t *testing.T) {
	util, _ := NewJWTUtil(testConfig())
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"id":  uuid.NewString(),
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("access-secret"))
	if _, err := util.ValidateAccessToken(token); err == nil {
		t.Fatal("expected invalid alg")
	}
}

func TestJWTUtil_MissingExpiry(t *testing.T) {
	util, _ := NewJWTUtil(testConfig())
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": uuid.NewString(),
	}).SignedString([]byte("access-secret"))
	if _, err := util.ValidateAccessToken(token); err == nil {
		t.Fatal("token without exp must be rejected")
	}
}

func TestJWTUtil_NonUUIDSubject(t *testing.T) {
	util, _ := NewJWTUtil(testConfig())
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "not-a-uuid",
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("access-secret"))
	if _, err := util.ValidateAccessToken(token); !authErrors.IsInvalidToken(err) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestNewJWTUtil_EmptySecret(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshTokenSecret = ""
	if _, err := NewJWTUtil(cfg); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
