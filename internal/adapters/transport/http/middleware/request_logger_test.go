package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_RedactsAndLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/deny", func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Cookie", "access_token=secret")
	req.Header.Set("Authorization", "Bearer secret")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/deny", nil))

	for _, e := range logs.All() {
		for _, f := range e.Context {
			if f.Key == "hdr" {
				require.False(t, strings.Contains(string(f.Interface.([]byte)), "secret"))
			}
		}
	}

	require.Equal(t, 1, logs.FilterMessage("↗︎ completed").Len())
	aborted := logs.FilterMessage("↗︎ aborted").All()
	require.Len(t, aborted, 1)
	require.Equal(t, zapcore.WarnLevel, aborted[0].Level)
}
