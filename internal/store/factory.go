package store

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"builty/internal/config"
	"builty/internal/entity"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	DBTypeMySQL    = "mysql"
	DBTypeSQLite   = "sqlite"
	DBTypePostgres = "postgres"
)

// New 根据配置实例化存储后端。未知或缺失的模式回退到本地存储。
func New(cfg config.Config) (Store, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.StoreMode))
	switch mode {
	case "", ModeLocal:
		return NewLocalStore(cfg.LocalDataDir)
	case ModeREST:
		baseURL := strings.TrimSpace(cfg.APIBaseURL)
		if baseURL == "" {
			return nil, fmt.Errorf("store: missing API base URL for rest mode")
		}
		return NewRESTStore(baseURL, cfg.APIToken), nil
	case ModeDatabase:
		return newDatabaseStore(cfg)
	default:
		logrus.WithField("mode", cfg.StoreMode).Warn("unknown store mode, falling back to local")
		return NewLocalStore(cfg.LocalDataDir)
	}
}

// newDatabaseStore 按 DBType 打开对应数据库并迁移表结构。
func newDatabaseStore(cfg config.Config) (Store, error) {
	var dialector gorm.Dialector
	switch cfg.DBType {
	case DBTypeMySQL:
		dsn := cfg.DSNURL
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				cfg.DBUser, cfg.DBPassword, cfg.DBAddr, cfg.DBPort, cfg.DBName)
		}
		dialector = mysql.Open(dsn)
	case DBTypePostgres:
		dsn := cfg.DSNURL
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				cfg.DBAddr, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		}
		dialector = postgres.Open(dsn)
	case "", DBTypeSQLite:
		filePath := cfg.DBPath
		if filePath == "" {
			filePath = "datas/builty.db"
		}
		// SQLite 连接时会自动创建 .db 文件，但目录必须已存在
		if dir := filepath.Dir(filePath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
			}
		}
		dialector = sqlite.Open(filePath)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}

	db, err := openGormDB(dialector)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(entity.MigrationModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return NewDatabaseStore(db)
}

func openGormDB(dialector gorm.Dialector) (*gorm.DB, error) {
	// 配置 GORM 日志
	gormLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second * 5,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   gormLogger,
		DisableForeignKeyConstraintWhenMigrating: true,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, err
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
