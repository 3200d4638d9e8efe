package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware)
	router.GET("/protected", func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})
	return router
}

func TestAuthMiddlewareRejectsMalformedHeaders(t *testing.T) {
	router := authTestRouter()

	headers := []string{
		"",
		"Basic dXNlcjpwYXNz",
		"Bearer",
		"Bearer ",
	}
	for _, header := range headers {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(w, req)

		assert.Equalf(t, 401, w.Code, "header %q must be rejected", header)
	}
}
