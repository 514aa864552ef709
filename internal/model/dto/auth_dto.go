package dto

// AdminLoginRequest 管理后台登录请求
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginResponse 登录成功返回 JWT
type AdminLoginResponse struct {
	Token string `json:"token"`
}
