package handler

import (
	"net/http"

	"whitelight-store/apps/api/model"
	"whitelight-store/pkg/jwt"
	"whitelight-store/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Login POST /api/admin/login
// 用户名不存在和密码错误返回同一个 401 文案，不泄露账号是否存在
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "username and password are required")
		return
	}

	var admin model.Admin
	if err := h.db.Where("username = ?", req.Username).First(&admin).Error; err != nil {
		response.Fail(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		response.Fail(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if !admin.IsActive {
		response.Fail(c, http.StatusForbidden, "Admin account is disabled")
		return
	}

	token, err := jwt.GenerateToken(admin.ID, admin.Username, admin.Role)
	if err != nil {
		h.serverError(c, "Failed to generate token", err)
		return
	}

	response.OK(c, "Login successful", gin.H{
		"token": token,
		"admin": admin,
	})
}

// Profile GET /api/admin/profile (需要认证)
func (h *Handler) Profile(c *gin.Context) {
	adminId := c.MustGet("adminId").(uint)

	var admin model.Admin
	if err := h.db.First(&admin, adminId).Error; err != nil {
		response.Fail(c, http.StatusNotFound, "Admin account not found")
		return
	}

	response.OK(c, "", admin)
}
