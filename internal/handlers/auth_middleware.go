package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/imagingpedia/learning-service/internal/services"
)

// AdminAuthMiddleware guards console routes with a bearer token issued by
// the admin login endpoint.
type AdminAuthMiddleware struct {
	adminService services.AdminService
}

func NewAdminAuthMiddleware(adminService services.AdminService) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{adminService: adminService}
}

// RequireAdmin aborts with 401 unless the request carries a valid
// "Authorization: Bearer <token>" header. On success the admin identity is
// stored in the context.
func (m *AdminAuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "missing authorization header",
			})
			return
		}

		claims, err := m.adminService.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "invalid or expired token",
			})
			return
		}

		c.Set("admin_id", claims.ID)
		c.Set("admin_username", claims.Username)
		c.Next()
	}
}
