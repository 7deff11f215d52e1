package exportstore

import (
	"context"
	"fmt"
	"strings"

	"builty/internal/config"
)

const (
	// TypeLocal 表示本地文件系统归档。
	TypeLocal = "local"
	// TypeS3 表示 Amazon S3 或兼容的存储后端。
	TypeS3 = "s3"
	// TypeOSS 表示阿里云 OSS 存储。
	TypeOSS = "oss"
	// TypeCOS 表示腾讯云 COS 存储。
	TypeCOS = "cos"
	// TypeR2 表示 Cloudflare R2 存储。
	TypeR2 = "r2"
)

// StoreOptions 控制导出文件如何归档。
//
// Collection 用于在存储端组织导出文件，Extension 提示首选的文件扩展名
// （不含前导点），BaseName 为空时使用时间戳文件名。
type StoreOptions struct {
	Collection   string
	Extension    string
	BaseName     string
	SkipIfExists bool
}

// Archive 持久化导出文件并返回存储特定的标识符（例如本地归档的相对路径
// 或对象存储的 key）。
type Archive interface {
	Store(ctx context.Context, data []byte, opts StoreOptions) (string, error)
}

// LocalBaseDirProvider 由暴露本地归档目录的驱动实现。
type LocalBaseDirProvider interface {
	LocalBaseDir() string
}

// NewArchive 根据配置实例化导出归档后端。
func NewArchive(cfg config.Config) (Archive, error) {
	typeName := strings.ToLower(strings.TrimSpace(cfg.ExportStorageType))
	switch typeName {
	case "", TypeLocal:
		return NewLocalArchive(cfg.ExportStorageLocalDir)
	case TypeS3:
		return NewS3Archive(cfg)
	case TypeOSS:
		return NewOSSArchive(cfg)
	case TypeCOS:
		return NewCOSArchive(cfg)
	case TypeR2:
		return NewR2Archive(cfg)
	default:
		return nil, fmt.Errorf("unsupported export storage type: %s", cfg.ExportStorageType)
	}
}
