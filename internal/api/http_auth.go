package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"builty/internal/auth"
	"builty/internal/entity"
	"builty/internal/permission"
	"builty/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthStatus 报告系统是否已有注册用户，用于首次启动引导。
func (h *HTTPHandler) AuthStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	count, err := store.CountUsers(ctx, h.store)
	if err != nil {
		logrus.WithError(err).Error("failed to count users for auth status")
		InternalError(c, "failed to check auth status")
		return
	}
	c.JSON(http.StatusOK, entity.AuthStatusResponse{HasUser: count > 0})
}

// Register 仅在没有任何用户时开放，创建首个管理员账号。
func (h *HTTPHandler) Register(c *gin.Context) {
	var req entity.AuthRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	count, err := store.CountUsers(ctx, h.store)
	if err != nil {
		logrus.WithError(err).Error("failed to count users during registration")
		InternalError(c, "failed to process registration")
		return
	}

	if count > 0 {
		ErrorResponse(c, http.StatusForbidden, ErrCodeRegistrationClosed, "registration disabled")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)
	if email == "" || password == "" {
		BadRequest(c, ErrCodeInvalidRequest, "email and password are required")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password")
		InternalError(c, "failed to register user")
		return
	}

	record, err := h.store.Create(ctx, entity.CollectionUsers, entity.Record{
		"email":         email,
		"password_hash": hash,
		"name":          strings.TrimSpace(req.Name),
		"role":          permission.RoleAdmin,
		"is_active":     true,
	})
	if err != nil {
		logrus.WithError(err).Error("failed to create initial user")
		InternalError(c, "failed to register user")
		return
	}

	sessionUser := entity.SessionUserFromRecord(record)
	token, expiresAt, err := h.authManager.GenerateToken(sessionUser)
	if err != nil {
		logrus.WithError(err).Error("failed to create token for user")
		InternalError(c, "failed to create session")
		return
	}

	c.JSON(http.StatusCreated, entity.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *sessionUser,
	})
}

// Login 校验邮箱与密码，成功后签发 JWT。
func (h *HTTPHandler) Login(c *gin.Context) {
	var req entity.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)
	if email == "" || password == "" {
		BadRequest(c, ErrCodeInvalidRequest, "email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	record, err := store.FindUserByEmail(ctx, h.store, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logrus.WithField("email", email).Warn("login attempt for unknown email")
			ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid email or password")
			return
		}
		logrus.WithError(err).WithField("email", email).Error("failed to load user for login")
		InternalError(c, "failed to process login")
		return
	}

	if active, ok := record["is_active"].(bool); ok && !active {
		ErrorResponse(c, http.StatusForbidden, ErrCodeUserDisabled, "user is disabled")
		return
	}

	hash, _ := record["password_hash"].(string)
	if err := auth.VerifyPassword(hash, password); err != nil {
		logrus.WithField("email", email).Warn("password verification failed")
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid email or password")
		return
	}

	sessionUser := entity.SessionUserFromRecord(record)
	if sessionUser == nil {
		InternalError(c, "failed to project user")
		return
	}

	token, expiresAt, err := h.authManager.GenerateToken(sessionUser)
	if err != nil {
		logrus.WithError(err).Error("failed to generate token")
		InternalError(c, "failed to create session")
		return
	}

	c.JSON(http.StatusOK, entity.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *sessionUser,
	})
}

// Me 返回当前登录用户的会话投影。
func (h *HTTPHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	c.JSON(http.StatusOK, entity.SessionUser{
		ID:                user.ID,
		Email:             user.Email,
		Name:              user.Name,
		Role:              user.Role,
		CustomPermissions: user.CustomPermissions,
	})
}
