package dto

// RegisterRequest HTTP层注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=50" example:"Ada"`
	Email    string `json:"email" binding:"required,email" example:"ada@example.com"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"secret1"`
}

// LoginRequest HTTP层登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ada@example.com"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// RefreshRequest 刷新Token请求
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}
