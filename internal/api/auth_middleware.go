package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"builty/internal/entity"
	"builty/internal/entity/common"
	"builty/internal/permission"
	"builty/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	currentUserContextKey = "current-user"
)

// RequestUser 存储请求上下文中的认证用户信息
type RequestUser struct {
	ID                int64
	Email             string
	Name              string
	Role              string
	CustomPermissions common.JSONMap
}

// Subject 构造权限判定主体
func (u *RequestUser) Subject() *permission.Subject {
	if u == nil {
		return nil
	}
	return &permission.Subject{
		Role:              u.Role,
		CustomPermissions: permission.OverridesFrom(u.CustomPermissions),
	}
}

// IsAdmin 判断用户是否具有管理员权限
func (u *RequestUser) IsAdmin() bool {
	if u == nil {
		return false
	}
	return permission.IsAdmin(u.Subject())
}

// AuthMiddleware JWT 认证中间件
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "缺少授权头",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "无效的授权头格式",
			})
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "缺少 Bearer Token",
			})
			return
		}

		claims, err := h.authManager.ParseToken(tokenString)
		if err != nil {
			logrus.WithError(err).Warn("failed to parse jwt token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeSessionExpired,
				Message: "Token 无效或已过期",
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		record, err := h.store.GetByID(ctx, entity.CollectionUsers, claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
					Code:    ErrCodeUserNotFound,
					Message: "用户不存在",
				})
				return
			}
			logrus.WithError(err).WithField("user_id", claims.UserID).Error("failed to load user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{
				Code:    ErrCodeInternalError,
				Message: "验证用户失败",
			})
			return
		}

		if active, ok := record["is_active"].(bool); ok && !active {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeUserDisabled,
				Message: "账户已被禁用",
			})
			return
		}

		sessionUser := entity.SessionUserFromRecord(record)
		if sessionUser == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUserNotFound,
				Message: "用户不存在",
			})
			return
		}

		requestUser := &RequestUser{
			ID:                sessionUser.ID,
			Email:             sessionUser.Email,
			Name:              sessionUser.Name,
			Role:              sessionUser.Role,
			CustomPermissions: sessionUser.CustomPermissions,
		}

		c.Set(currentUserContextKey, requestUser)
		c.Next()
	}
}

// RequireAdmin 管理员权限守卫中间件
func (h *HTTPHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeForbidden,
				Message: "需要管理员权限",
			})
			return
		}
		c.Next()
	}
}

// RequireCollectionPermission 按 HTTP 方法校验 :collection 路由参数对应模块
// 的权限。模块名与集合名一致。
func (h *HTTPHandler) RequireCollectionPermission() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "authentication required",
			})
			return
		}

		module := c.Param("collection")
		action := actionForMethod(c.Request.Method)
		if action == "" {
			c.AbortWithStatusJSON(http.StatusMethodNotAllowed, APIError{
				Code:    ErrCodeInvalidRequest,
				Message: "unsupported method",
			})
			return
		}

		if !permission.Has(user.Subject(), module, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeForbidden,
				Message: "permission denied for " + module + "." + action,
			})
			return
		}
		c.Next()
	}
}

// RequirePermission 校验固定模块与动作的权限
func (h *HTTPHandler) RequirePermission(module, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !permission.Has(user.Subject(), module, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeForbidden,
				Message: "permission denied for " + module + "." + action,
			})
			return
		}
		c.Next()
	}
}

// actionForBatch maps a batch step action onto the permission action it
// requires.
func actionForBatch(action string) string {
	switch action {
	case store.TxCreate:
		return permission.ActionAdd
	case store.TxUpdate:
		return permission.ActionEdit
	case store.TxDelete:
		return permission.ActionDelete
	default:
		return ""
	}
}

func actionForMethod(method string) string {
	switch method {
	case http.MethodGet:
		return permission.ActionView
	case http.MethodPost:
		return permission.ActionAdd
	case http.MethodPut, http.MethodPatch:
		return permission.ActionEdit
	case http.MethodDelete:
		return permission.ActionDelete
	default:
		return ""
	}
}

// CurrentUser 从上下文获取当前认证用户
func CurrentUser(c *gin.Context) *RequestUser {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*RequestUser)
	if !ok {
		return nil
	}
	return user
}
