package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"rwportal-http-service/internal/domain/models"
	"rwportal-http-service/internal/domain/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubParser map[string]*services.Caller

func (p stubParser) ParseCaller(token string) (*services.Caller, error) {
	if caller, ok := p[token]; ok {
		return caller, nil
	}
	return nil, errors.New("bad token")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(roles ...models.Role) *gin.Engine {
	InitAuthMiddleware(stubParser{
		"admin": {UserID: 1, Role: models.RoleKetuaRW},
		"warga": {UserID: 4, Role: models.RoleWarga},
	})
	r := gin.New()
	handlers := []gin.HandlerFunc{Authenticate()}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRoles(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		caller := GetCaller(c)
		c.String(http.StatusOK, string(caller.Role))
	})
	r.GET("/x", handlers...)
	return r
}

func doAuth(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	r := newAuthRouter()

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic admin", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer admin", http.StatusOK},
		{"scheme is case insensitive", "bearer warga", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doAuth(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	r := newAuthRouter(models.RWBoardRoles()...)

	assert.Equal(t, http.StatusOK, doAuth(r, "Bearer admin").Code)
	assert.Equal(t, http.StatusForbidden, doAuth(r, "Bearer warga").Code)
	assert.Equal(t, http.StatusUnauthorized, doAuth(r, "").Code)

	// 未经 Authenticate 时视为未认证
	bare := gin.New()
	bare.GET("/x", RequireRoles(models.RoleKetuaRW), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	bare.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
