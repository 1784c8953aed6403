package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-catalog-api/internal/domain/errs"
	"go-catalog-api/internal/repo"
	"go-catalog-api/internal/service"
	"go-catalog-api/internal/transport/http/middleware"
	"go-catalog-api/internal/transport/http/response"
)

type AuthHandler struct {
	Auth         *service.AuthService
	Users        *repo.UserRepo
	Log          *zap.Logger
	ResetBaseURL string // 邮件里重置链接的前缀
}

type loginIn struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerIn struct {
	Name     string `json:"name" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone_number" binding:"omitempty,max=32"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	out, err := h.Auth.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	response.OK(c, "login ok", out)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in registerIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	out, err := h.Auth.Register(c.Request.Context(), in.Name, in.Email, in.Password, in.Phone)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	response.Created(c, "registered", out)
}

func (h *AuthHandler) Me(c *gin.Context) {
	uid := middleware.UID(c)
	u, err := h.Users.FindByID(c.Request.Context(), uid)
	if err != nil {
		response.Err(c, h.Log, errs.Internal("user lookup failed", err))
		return
	}
	if u == nil {
		response.Err(c, h.Log, errs.NotFound("user %d not found", uid))
		return
	}
	response.OK(c, "OK", u)
}

type changePasswordIn struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var in changePasswordIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	if err := h.Auth.ChangePassword(c.Request.Context(), middleware.UID(c), in.OldPassword, in.NewPassword); err != nil {
		response.Err(c, h.Log, err)
		return
	}
	response.OK(c, "password changed", nil)
}

type forgotIn struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword 无论邮箱是否注册都回同一句话，防账号探测
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var in forgotIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	if err := h.Auth.ForgotPassword(c.Request.Context(), in.Email, h.ResetBaseURL); err != nil {
		response.Err(c, h.Log, err)
		return
	}
	response.OK(c, "if that address is registered, a reset email is on its way", nil)
}

type resetIn struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var in resetIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	if err := h.Auth.ResetPassword(c.Request.Context(), in.Token, in.Password); err != nil {
		response.Err(c, h.Log, err)
		return
	}
	response.OK(c, "password reset", nil)
}
