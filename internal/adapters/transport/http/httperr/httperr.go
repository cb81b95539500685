// Package httperr turns domain errors into the JSON error envelope
// {success:false, message}.
package httperr

import (
	"errors"
	"net/http"
	"strings"

	customErrors "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
)

// Порядок важен: более конкретные ошибки раньше общих.
// Для opaque-строк клиент получает только текст sentinel, детали остаются в цепочке ошибки.
var table = []struct {
	sentinel error
	status   int
	opaque   bool
}{
	{customErrors.ErrRefreshInvalid, http.StatusBadRequest, false},
	{customErrors.ErrSessionExpired, http.StatusBadRequest, false},
	{customErrors.ErrInvalidArgument, http.StatusBadRequest, false},
	{customErrors.ErrInvalidCredentials, http.StatusBadRequest, false},
	{customErrors.ErrMissingToken, http.StatusBadRequest, false},
	{customErrors.ErrInvalidToken, http.StatusBadRequest, false},
	{customErrors.ErrSessionNotFound, http.StatusBadRequest, true},
	{customErrors.ErrCodeMismatch, http.StatusBadRequest, false},
	{customErrors.ErrAlreadyExists, http.StatusBadRequest, false},
	{customErrors.ErrForbidden, http.StatusForbidden, false},
	{customErrors.ErrNotFound, http.StatusNotFound, false},
}

// Resolve returns the status code and the client-facing message for err.
// Internal failures never leak their cause.
func Resolve(err error) (int, string) {
	if customErrors.IsInternal(err) {
		return http.StatusInternalServerError, "internal server error"
	}
	for _, row := range table {
		if errors.Is(err, row.sentinel) {
			if row.opaque {
				return row.status, row.sentinel.Error()
			}
			return row.status, message(err, row.sentinel)
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

// message strips the category prefix added by the NewX constructors.
// Nested sentinels carry their parent's prefix as well.
func message(err, sentinel error) string {
	msg := err.Error()
	for s := sentinel; s != nil; s = errors.Unwrap(s) {
		if rest, ok := strings.CutPrefix(msg, s.Error()+": "); ok && rest != "" {
			return rest
		}
	}
	return msg
}

func Write(c *gin.Context, err error) {
	status, msg := Resolve(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"success": false, "message": msg})
}

func Abort(c *gin.Context, err error) {
	status, msg := Resolve(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}
