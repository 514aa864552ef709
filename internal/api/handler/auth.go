package handler

import (
	"log"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/qs3c/tgbot_go_server/config"
	"github.com/qs3c/tgbot_go_server/internal/model/dto"
	"github.com/qs3c/tgbot_go_server/internal/pkg/jwt"
	"github.com/qs3c/tgbot_go_server/internal/pkg/response"
)

// adminUserID 管理后台单账号，固定 ID
const adminUserID = int64(1)

type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// Login 管理员登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "用户名和密码不能为空")
		return
	}

	if req.Username != h.cfg.Admin.Username {
		response.AuthError(c, "用户名或密码错误")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.cfg.Admin.PasswordHash), []byte(req.Password)); err != nil {
		response.AuthError(c, "用户名或密码错误")
		return
	}

	token, err := jwt.GenerateToken(adminUserID, h.cfg.JWT.Secret, h.cfg.JWT.ExpireHours)
	if err != nil {
		log.Printf("Failed to generate token: %v", err)
		response.ServerError(c, "")
		return
	}

	response.Success(c, dto.AdminLoginResponse{Token: token})
}
