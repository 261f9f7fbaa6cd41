package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-system/pkg/service"
	"equipment-system/pkg/utils"
)

func TestAuthMiddleware(t *testing.T) {
	jwtSvc := service.NewJWTService("secret", time.Hour, time.Now)
	mw := NewAuthMiddleware(jwtSvc, zap.NewNop())

	var seen string
	handler := mw.Auth(func(c echo.Context) error {
		seen = utils.Actor(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	token, err := jwtSvc.GenerateAccessToken("tech-1")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			require.NoError(t, handler(echo.New().NewContext(req, rec)))
			assert.Equal(t, tc.code, rec.Code)
		})
	}
	assert.Equal(t, "tech-1", seen)
}
