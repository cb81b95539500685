package http

import (
	"net/http"

	"github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/model"
	"github.com/gin-gonic/gin"
)

// CookieOptions are fixed per deployment.
type CookieOptions struct {
	Domain string
	Secure bool
}

func issueTokens(c *gin.Context, pair model.TokenPair, opts CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.AccessTokenCookie,
		pair.AccessToken,
		int(pair.AccessTTL.Seconds()),
		"/",
		opts.Domain,
		opts.Secure,
		true, // httpOnly
	)
	c.SetCookie(
		middleware.RefreshTokenCookie,
		pair.RefreshToken,
		int(pair.RefreshTTL.Seconds()),
		"/",
		opts.Domain,
		opts.Secure,
		true,
	)
}

// clearTokens выставляет пустые куки с Max-Age=0.
func clearTokens(c *gin.Context, opts CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", opts.Domain, opts.Secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", opts.Domain, opts.Secure, true)
}
