package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/transport/http/httperr"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/transport/http/middleware"
	authsvc "github.com/Miraines/MoonyAndStarry/learning-service/internal/app/auth/service"
	ordersvc "github.com/Miraines/MoonyAndStarry/learning-service/internal/app/order"
	customErrors "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/model"
	lg "github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/log"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Check is a readiness probe of one backing dependency.
type Check func(ctx context.Context) error

type Handler struct {
	auth    authsvc.Service
	orders  ordersvc.Service
	cookies CookieOptions
	checks  map[string]Check
	log     *zap.Logger
}

func NewHandler(
	auth authsvc.Service,
	orders ordersvc.Service,
	cookies CookieOptions,
	checks map[string]Check,
	log *zap.Logger,
) *Handler {
	return &Handler{auth: auth, orders: orders, cookies: cookies, checks: checks, log: log}
}

func bind(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		httperr.Write(c, customErrors.NewInvalidArgument(err.Error()))
		return false
	}
	return true
}

func mustUser(c *gin.Context) (model.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		httperr.Write(c, customErrors.ErrMissingToken)
	}
	return u, ok
}

func (h *Handler) Register(c *gin.Context) {
	var body dto.RegisterDTO
	if !bind(c, &body) {
		return
	}
	h.log.Info("/registration", lg.Email(body.Email))

	token, err := h.auth.Register(c.Request.Context(), body)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":         true,
		"message":         "Please check your email: " + body.Email + " to activate your account!",
		"activationToken": token,
	})
}

func (h *Handler) Activate(c *gin.Context) {
	var body dto.ActivateDTO
	if !bind(c, &body) {
		return
	}
	if err := h.auth.Activate(c.Request.Context(), body); err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

func (h *Handler) Login(c *gin.Context) {
	var body dto.LoginDTO
	if !bind(c, &body) {
		return
	}
	h.log.Info("/login-user", lg.Email(body.Email))

	user, pair, err := h.auth.Login(c.Request.Context(), body)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	h.sendSession(c, user, pair)
}

func (h *Handler) SocialAuth(c *gin.Context) {
	var body dto.SocialAuthDTO
	if !bind(c, &body) {
		return
	}
	h.log.Info("/social-auth", lg.Email(body.Email))

	user, pair, err := h.auth.SocialAuth(c.Request.Context(), body)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	h.sendSession(c, user, pair)
}

func (h *Handler) sendSession(c *gin.Context, user model.User, pair model.TokenPair) {
	issueTokens(c, pair, h.cookies)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"user":        user,
		"accessToken": pair.AccessToken,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	if err := h.auth.Logout(c.Request.Context(), user.ID); err != nil {
		httperr.Write(c, err)
		return
	}
	clearTokens(c, h.cookies)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

func (h *Handler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(middleware.RefreshTokenCookie)

	pair, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	issueTokens(c, pair, h.cookies)
	c.JSON(http.StatusOK, gin.H{"status": "success", "accessToken": pair.AccessToken})
}

func (h *Handler) UserInfo(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	info, err := h.auth.GetUserInfo(c.Request.Context(), user.ID)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": info})
}

func (h *Handler) UpdateUserInfo(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	var body dto.UpdateUserInfoDTO
	if !bind(c, &body) {
		return
	}
	updated, err := h.auth.UpdateUserInfo(c.Request.Context(), user.ID, body)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": updated})
}

func (h *Handler) UpdatePassword(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	var body dto.UpdatePasswordDTO
	if !bind(c, &body) {
		return
	}
	updated, err := h.auth.UpdatePassword(c.Request.Context(), user.ID, body)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": updated})
}

func (h *Handler) UpdateAvatar(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	var body dto.UpdateAvatarDTO
	if !bind(c, &body) {
		return
	}
	updated, err := h.auth.UpdateAvatar(c.Request.Context(), user.ID, body)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": updated})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	var body dto.CreateOrderDTO
	if !bind(c, &body) {
		return
	}
	order, err := h.orders.CreateOrder(c.Request.Context(), user.ID, body)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "order": order})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
}

func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	report := make(gin.H, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			report[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "unavailable"
	}
	c.JSON(status, gin.H{"status": state, "checks": report})
}

func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"message": "Route " + c.Request.URL.Path + " not found",
	})
}
