package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"builty/internal/api"
	"builty/internal/config"
	"builty/internal/exportstore"
	"builty/internal/permission"
	"builty/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// .env 仅本地开发使用，缺失时忽略
	_ = godotenv.Load()

	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		return
	}

	// 初始化logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	st, err := store.New(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise store")
		return
	}

	if err := store.SeedDefaults(context.Background(), st); err != nil {
		logrus.WithError(err).Warn("failed to seed default records")
	}

	archive, err := exportstore.NewArchive(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise export archive")
		return
	}

	httpHandler, err := api.NewHTTPHandler(cfg, st, archive)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		return
	}

	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// 添加中间件
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	apiGroup := r.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.GET("/status", httpHandler.AuthStatus)
	authGroup.POST("/register", httpHandler.Register)
	authGroup.POST("/login", httpHandler.Login)
	authGroup.GET("/me", httpHandler.AuthMiddleware(), httpHandler.Me)

	protected := apiGroup.Group("")
	protected.Use(httpHandler.AuthMiddleware())
	protected.GET("/permissions", httpHandler.MyPermissions)
	protected.POST("/transaction", httpHandler.Batch)

	records := protected.Group("/records/:collection")
	records.Use(httpHandler.RequireCollectionPermission())
	records.GET("", httpHandler.ListRecords)
	records.POST("", httpHandler.CreateRecord)
	records.GET("/:id", httpHandler.GetRecord)
	records.PUT("/:id", httpHandler.UpdateRecord)
	records.DELETE("/:id", httpHandler.DeleteRecord)

	reports := protected.Group("/reports")
	reports.Use(httpHandler.RequirePermission("reports", permission.ActionExport))
	reports.POST("/:collection/export", httpHandler.ExportCollection)

	catalog := protected.Group("/catalog")
	catalog.GET("/roles", httpHandler.ListRoles)
	catalog.GET("/modules", httpHandler.ListModules)

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logger.WithField("host", serverHost).Info("服务器启动")
	// 创建HTTP服务器
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  300 * time.Second,
	}
	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Error("服务器启动失败")
	}
}

// RequestIDMiddleware 为每个请求生成关联 ID，便于日志追踪
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request-id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// CORSMiddleware CORS跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware 日志记录中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// 处理请求
		c.Next()
		// 记录请求结束
		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString("request-id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   duration.String(),
			"size":       c.Writer.Size(),
			"client_ip":  c.ClientIP(),
		}).Info("http_request")
	}
}
