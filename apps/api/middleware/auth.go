package middleware

import (
	"net/http"
	"strings"

	"whitelight-store/apps/api/model"
	"whitelight-store/pkg/jwt"
	"whitelight-store/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminAuth 写接口的管理员认证
// Token 合法还不够，对应的管理员行必须存在且 is_active
func AdminAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 获取 Header 里的 Authorization
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Fail(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		// 2. 格式通常是 "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Fail(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			c.Abort()
			return
		}

		// 3. 解析 Token
		claims, err := jwt.ParseToken(parts[1])
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		// 4. 回查管理员行，停用的账号立刻失效，不用等 Token 过期
		var admin model.Admin
		if err := db.First(&admin, claims.AdminId).Error; err != nil {
			response.Fail(c, http.StatusForbidden, "Admin account not found")
			c.Abort()
			return
		}
		if !admin.IsActive {
			response.Fail(c, http.StatusForbidden, "Admin account is disabled")
			c.Abort()
			return
		}

		// 5. 存入 Context，供后续 Handler 使用
		c.Set("adminId", admin.ID)
		c.Set("adminUsername", admin.Username)
		c.Set("adminRole", admin.Role)

		c.Next()
	}
}
