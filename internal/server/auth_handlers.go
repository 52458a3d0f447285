package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"github.com/netgee-k/mt5-v2/internal/auth"
	"github.com/netgee-k/mt5-v2/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" {
		s.writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	hash, err := s.auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("password must be at least %d characters long", s.cfg.Auth.PasswordMinLength))
		return
	}
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	user := models.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hash,
		FullName:       req.FullName,
		IsActive:       true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		s.writeError(w, http.StatusConflict, "username or email already taken")
		return
	}

	s.sendVerificationMail(r, &user)

	s.writeJSON(w, http.StatusCreated, user)
}

func (s *Server) sendVerificationMail(r *http.Request, user *models.User) {
	if s.mailer == nil {
		s.log.Info("SMTP not configured, skipping verification mail",
			zap.String("email", user.Email))
		return
	}

	token, err := s.auth.GenerateVerifyToken(user.ID, user.Username)
	if err != nil {
		s.log.Error("Failed to create verification token", zap.Error(err))
		return
	}

	verifyURL := fmt.Sprintf("%s/api/auth/verify?token=%s", s.cfg.Server.BaseURL, token)
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	if err := s.mailer.SendVerification(r.Context(), user.Email, name, verifyURL, s.cfg.Auth.VerifyTokenTTLHrs); err != nil {
		s.log.Warn("Failed to send verification mail", zap.Error(err))
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var user models.User
	err := s.db.Where("username = ? OR email = ?", req.Username, req.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		s.log.Error("Failed to look up user", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if !user.IsActive {
		s.writeError(w, http.StatusForbidden, "account is disabled")
		return
	}
	if err := s.auth.VerifyPassword(user.HashedPassword, req.Password); err != nil {
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	resp, err := s.issueTokens(&user)
	if err != nil {
		s.log.Error("Failed to issue tokens", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	s.log.Info("User logged in", zap.Uint("user_id", user.ID))
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) issueTokens(user *models.User) (*tokenResponse, error) {
	access, err := s.auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	refresh := models.RefreshToken{
		UserID:    user.ID,
		Token:     s.auth.NewRefreshToken(),
		ExpiresAt: time.Now().Add(s.auth.RefreshTokenTTL()),
	}
	if err := s.db.Create(&refresh).Error; err != nil {
		return nil, err
	}

	return &tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		TokenType:    "bearer",
	}, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var stored models.RefreshToken
	err := s.db.Where("token = ? AND revoked = ?", req.RefreshToken, false).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && stored.ExpiresAt.Before(time.Now())) {
		s.writeError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}
	if err != nil {
		s.log.Error("Failed to look up refresh token", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}

	var user models.User
	if err := s.db.First(&user, stored.UserID).Error; err != nil || !user.IsActive {
		s.writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	// Rotate: the old token is spent once a new pair is issued.
	if err := s.db.Model(&stored).Update("revoked", true).Error; err != nil {
		s.log.Error("Failed to revoke refresh token", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}

	resp, err := s.issueTokens(&user)
	if err != nil {
		s.log.Error("Failed to issue tokens", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	claims, err := s.auth.ValidateToken(token, auth.PurposeVerify)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid or expired verification token")
		return
	}

	if err := s.db.Model(&models.User{}).Where("id = ?", claims.UserID).
		Update("is_verified", true).Error; err != nil {
		s.log.Error("Failed to mark user verified", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "verification failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"message": "email verified"})
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

func (s *Server) handlePasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Always answer 200 so the endpoint can't be used to probe for accounts.
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err == nil && s.mailer != nil {
		if token, err := s.auth.GenerateResetToken(user.ID, user.Username); err == nil {
			resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.Server.BaseURL, token)
			name := user.FullName
			if name == "" {
				name = user.Username
			}
			if err := s.mailer.SendPasswordReset(r.Context(), user.Email, name, resetURL); err != nil {
				s.log.Warn("Failed to send reset mail", zap.Error(err))
			}
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "if the address exists, a reset link has been sent",
	})
}

type passwordResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req passwordResetConfirm
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims, err := s.auth.ValidateToken(req.Token, auth.PurposeReset)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid or expired reset token")
		return
	}

	hash, err := s.auth.HashPassword(req.NewPassword)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("password must be at least %d characters long", s.cfg.Auth.PasswordMinLength))
		return
	}
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "reset failed")
		return
	}

	if err := s.db.Model(&models.User{}).Where("id = ?", claims.UserID).
		Update("hashed_password", hash).Error; err != nil {
		s.log.Error("Failed to update password", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "reset failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
