package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-catalog-api/internal/core/auth"
	"go-catalog-api/internal/core/database"
	"go-catalog-api/internal/core/mailer"
	"go-catalog-api/internal/domain"
	"go-catalog-api/internal/domain/errs"
	"go-catalog-api/internal/repo"
	"go-catalog-api/pkg/utils"
)

const resetTokenTTL = 30 * time.Minute

type AuthService struct {
	users  *repo.UserRepo
	jwter  *auth.JWTer
	mailer mailer.Mailer
	log    *zap.Logger
}

func NewAuthService(users *repo.UserRepo, jwter *auth.JWTer, m mailer.Mailer, log *zap.Logger) *AuthService {
	return &AuthService{users: users, jwter: jwter, mailer: m, log: log}
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, errs.Internal("login lookup failed", err)
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, errs.Unauthorized("invalid credentials")
	}
	if !u.Active {
		return nil, errs.Forbidden("account disabled")
	}
	tok, err := s.jwter.Issue(u.ID, u.RoleName())
	if err != nil {
		return nil, errs.Internal("issue token failed", err)
	}
	return &LoginResult{Token: tok, User: u}, nil
}

func (s *AuthService) Register(ctx context.Context, name, email, password, phone string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	role, err := s.users.RoleByName(ctx, auth.RoleUser)
	if err != nil || role == nil {
		return nil, errs.Internal("default role missing", err)
	}
	u := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: utils.HashPassword(password),
		PhoneNumber:  strings.TrimSpace(phone),
		Active:       true,
		RoleID:       role.ID,
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, errs.Conflict("email already registered")
		}
		return nil, errs.Internal("register failed", err)
	}
	tok, err := s.jwter.Issue(u.ID, role.Name)
	if err != nil {
		return nil, errs.Internal("issue token failed", err)
	}
	return &LoginResult{Token: tok, User: u}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, uid int64, oldPw, newPw string) error {
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return errs.Internal("user lookup failed", err)
	}
	if u == nil {
		return errs.NotFound("user %d not found", uid)
	}
	if !utils.CheckPassword(oldPw, u.PasswordHash) {
		return errs.Unauthorized("wrong current password")
	}
	u.PasswordHash = utils.HashPassword(newPw)
	if err := s.users.Update(ctx, u); err != nil {
		return errs.Internal("password update failed", err)
	}
	return nil
}

// ForgotPassword 生成一次性重置 token 并寄出。是否存在该邮箱不回传，
// 避免探测已注册账号。
func (s *AuthService) ForgotPassword(ctx context.Context, email, resetBaseURL string) error {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return errs.Internal("user lookup failed", err)
	}
	if u == nil {
		return nil
	}
	plain, hashed := utils.NewResetToken()
	exp := time.Now().Add(resetTokenTTL)
	u.ResetToken = hashed
	u.ResetTokenExpires = &exp
	if err := s.users.Update(ctx, u); err != nil {
		return errs.Internal("save reset token failed", err)
	}

	link := fmt.Sprintf("%s?token=%s", resetBaseURL, plain)
	body := fmt.Sprintf("<p>Hello %s,</p><p>Reset your password within 30 minutes:</p><p><a href=%q>%s</a></p>", u.Name, link, link)
	if err := s.mailer.Send(u.Email, "Password reset", body); err != nil {
		s.log.Error("reset mail failed", zap.Error(err))
		return errs.Internal("could not send reset email", err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPw string) error {
	u, err := s.users.FindByResetToken(ctx, utils.HashToken(token))
	if err != nil {
		return errs.Internal("token lookup failed", err)
	}
	if u == nil {
		return errs.Unauthorized("invalid or expired reset token")
	}
	u.PasswordHash = utils.HashPassword(newPw)
	u.ResetToken = ""
	u.ResetTokenExpires = nil
	if err := s.users.Update(ctx, u); err != nil {
		return errs.Internal("password update failed", err)
	}
	return nil
}
