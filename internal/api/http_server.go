package api

import (
	"time"

	"builty/internal/auth"
	"builty/internal/config"
	"builty/internal/exportstore"
	"builty/internal/service"
	"builty/internal/store"
)

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg         config.Config
	store       store.Store
	archive     exportstore.Archive
	authManager *auth.Manager

	// 服务层
	reportService *service.ReportService
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, st store.Store, archive exportstore.Archive) (*HTTPHandler, error) {
	expiry := time.Duration(cfg.JWTExpirationMinutes) * time.Minute
	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, expiry)
	if err != nil {
		return nil, err
	}

	return &HTTPHandler{
		cfg:           cfg,
		store:         st,
		archive:       archive,
		authManager:   authManager,
		reportService: service.NewReportService(st, archive),
	}, nil
}
