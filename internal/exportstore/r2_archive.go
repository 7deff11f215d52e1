package exportstore

import (
	"errors"
	"fmt"
	"strings"

	"builty/internal/config"
)

// NewR2Archive 构建 Cloudflare R2 归档驱动。R2 提供 S3 兼容接口，
// 因此底层复用 S3 客户端，仅 endpoint 的推导方式不同。
func NewR2Archive(cfg config.Config) (Archive, error) {
	bucket := strings.TrimSpace(cfg.ExportR2Bucket)
	if bucket == "" {
		return nil, errors.New("exportstore: missing R2 bucket")
	}
	accessKey := strings.TrimSpace(cfg.ExportR2AccessKeyID)
	secretKey := strings.TrimSpace(cfg.ExportR2SecretAccessKey)
	if accessKey == "" || secretKey == "" {
		return nil, errors.New("exportstore: missing R2 credentials")
	}

	endpoint := strings.TrimSpace(cfg.ExportR2Endpoint)
	if endpoint == "" {
		accountID := strings.TrimSpace(cfg.ExportR2AccountID)
		if accountID == "" {
			return nil, errors.New("exportstore: missing R2 endpoint or account id")
		}
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	}

	region := strings.TrimSpace(cfg.ExportR2Region)
	if region == "" {
		region = "auto"
	}

	client, err := newS3Client(s3ClientOptions{
		Region:          region,
		Endpoint:        endpoint,
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
		ForcePathStyle:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("exportstore: create R2 client: %w", err)
	}

	return &s3Archive{
		client: client,
		bucket: bucket,
		prefix: trimPrefix(cfg.ExportR2Prefix),
	}, nil
}
