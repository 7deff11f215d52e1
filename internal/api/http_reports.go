package api

import (
	"context"
	"net/http"
	"time"

	"builty/internal/entity"
	"builty/internal/permission"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ExportCollection POST /api/reports/:collection/export
//
// 需要 reports.export 权限（由路由层守卫），同时要求对目标集合有 view 权限，
// 防止通过导出绕过集合级的读取限制。
func (h *HTTPHandler) ExportCollection(c *gin.Context) {
	collection := c.Param("collection")
	if !entity.KnownCollection(collection) {
		NotFound(c, ErrCodeCollectionNotFound, "unknown collection: "+collection)
		return
	}

	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}
	if !permission.Has(user.Subject(), collection, permission.ActionView) {
		Forbidden(c, "permission denied for "+collection+"."+permission.ActionView)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	result, err := h.reportService.Export(ctx, collection)
	if err != nil {
		logrus.WithError(err).WithField("collection", collection).Error("export failed")
		ErrorResponse(c, http.StatusInternalServerError, ErrCodeExportFailed, "failed to export collection")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListRoles GET /api/catalog/roles 返回可选角色及其说明
func (h *HTTPHandler) ListRoles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"roles": permission.Roles()})
}

// ListModules GET /api/catalog/modules 返回权限模块目录
func (h *HTTPHandler) ListModules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"modules": permission.Modules()})
}

// MyPermissions GET /api/permissions 返回当前用户各模块的已解析权限
func (h *HTTPHandler) MyPermissions(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	subject := user.Subject()
	resolved := make(map[string]permission.CapabilitySet)
	for _, module := range permission.Modules() {
		resolved[module.Key] = permission.GetPermissions(subject, module.Key)
	}
	c.JSON(http.StatusOK, gin.H{
		"role":        user.Role,
		"permissions": resolved,
	})
}
