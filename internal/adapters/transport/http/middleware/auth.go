package middleware

import (
	"context"
	"fmt"
	"slices"

	"github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/transport/http/httperr"
	customErrors "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/metrics"
	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	userKey = "auth.user"
)

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (model.User, error)
}

// RequireAuth пускает запрос дальше только при валидном access-токене
// и живой записи в кэше сессий. Автоматического refresh здесь нет.
func RequireAuth(auth Authenticator, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(AccessTokenCookie)

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if m != nil {
				m.AuthRejections.WithLabelValues(rejectReason(err)).Inc()
			}
			httperr.Abort(c, err)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// AuthorizeRoles must run after RequireAuth.
func AuthorizeRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			httperr.Abort(c, customErrors.ErrMissingToken)
			return
		}
		if !slices.Contains(roles, user.Role) {
			httperr.Abort(c, customErrors.NewForbidden(
				fmt.Sprintf("role: %s is not allowed to access this resource", user.Role),
			))
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return model.User{}, false
	}
	u, ok := v.(model.User)
	return u, ok
}

func rejectReason(err error) string {
	switch {
	case customErrors.IsMissingToken(err):
		return "missing_token"
	case customErrors.IsInvalidToken(err):
		return "invalid_token"
	case customErrors.IsSessionNotFound(err):
		return "session_not_found"
	default:
		return "internal"
	}
}
