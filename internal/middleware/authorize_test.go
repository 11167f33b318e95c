package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"worksync/api/internal/models"
)

func performWithUser(t *testing.T, user *models.User, required ...models.Role) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.GET("/probe",
		func(c *gin.Context) {
			if user != nil {
				c.Set("current_user", *user)
			}
			c.Next()
		},
		RequireRoles(required...),
		func(c *gin.Context) {
			c.Status(http.StatusOK)
		},
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name     string
		user     *models.User
		required []models.Role
		expected int
	}{
		{
			name:     "no user",
			user:     nil,
			required: []models.Role{models.RoleAdmin},
			expected: http.StatusUnauthorized,
		},
		{
			name:     "matching role",
			user:     &models.User{ID: "u1", Role: "admin"},
			required: []models.Role{models.RoleAdmin, models.RoleSuperAdmin},
			expected: http.StatusOK,
		},
		{
			name:     "super admin on admin route",
			user:     &models.User{ID: "u1", Role: "superAdmin"},
			required: []models.Role{models.RoleAdmin, models.RoleSuperAdmin},
			expected: http.StatusOK,
		},
		{
			name:     "employee on admin route",
			user:     &models.User{ID: "u1", Role: "employee"},
			required: []models.Role{models.RoleAdmin, models.RoleSuperAdmin},
			expected: http.StatusForbidden,
		},
		{
			name:     "garbage role parses to employee and is rejected",
			user:     &models.User{ID: "u1", Role: "sudo"},
			required: []models.Role{models.RoleAdmin, models.RoleSuperAdmin},
			expected: http.StatusForbidden,
		},
		{
			name:     "garbage role passes employee gate",
			user:     &models.User{ID: "u1", Role: "sudo"},
			required: []models.Role{models.RoleEmployee},
			expected: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := performWithUser(t, tt.user, tt.required...)
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}
