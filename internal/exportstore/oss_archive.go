package exportstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"builty/internal/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type ossArchive struct {
	bucket *oss.Bucket
	prefix string
}

// NewOSSArchive 构建阿里云 OSS 归档驱动。
func NewOSSArchive(cfg config.Config) (Archive, error) {
	endpoint := strings.TrimSpace(cfg.ExportOSSEndpoint)
	if endpoint == "" {
		return nil, errors.New("exportstore: missing OSS endpoint")
	}
	bucketName := strings.TrimSpace(cfg.ExportOSSBucket)
	if bucketName == "" {
		return nil, errors.New("exportstore: missing OSS bucket")
	}
	accessKeyID := strings.TrimSpace(cfg.ExportOSSAccessKeyID)
	accessKeySecret := strings.TrimSpace(cfg.ExportOSSAccessKeySecret)
	if accessKeyID == "" || accessKeySecret == "" {
		return nil, errors.New("exportstore: missing OSS credentials")
	}

	client, err := oss.New(endpoint, accessKeyID, accessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("exportstore: create OSS client: %w", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("exportstore: open OSS bucket: %w", err)
	}

	return &ossArchive{
		bucket: bucket,
		prefix: trimPrefix(cfg.ExportOSSPrefix),
	}, nil
}

func (a *ossArchive) Store(ctx context.Context, data []byte, opts StoreOptions) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty payload")
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	key := buildExportPath(opts.Collection, opts.BaseName, opts.Extension)
	if a.prefix != "" {
		key = joinPrefix(a.prefix, key)
	}

	if opts.SkipIfExists {
		exists, err := a.bucket.IsObjectExist(key, oss.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("check object: %w", err)
		}
		if exists {
			return key, nil
		}
	}

	options := []oss.Option{oss.WithContext(ctx)}
	if ct := detectContentType(opts.Extension); ct != "" {
		options = append(options, oss.ContentType(ct))
	}

	if err := a.bucket.PutObject(key, bytes.NewReader(data), options...); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return key, nil
}

var _ Archive = (*ossArchive)(nil)
