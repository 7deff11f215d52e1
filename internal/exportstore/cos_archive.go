package exportstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"builty/internal/config"

	"github.com/tencentyun/cos-go-sdk-v5"
)

type cosArchive struct {
	client *cos.Client
	prefix string
}

// NewCOSArchive 构建腾讯云 COS 归档驱动。
func NewCOSArchive(cfg config.Config) (Archive, error) {
	baseURL := strings.TrimSpace(cfg.ExportCOSBucketURL)
	if baseURL == "" {
		return nil, errors.New("exportstore: missing COS bucket URL")
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("exportstore: parse COS bucket URL: %w", err)
	}

	secretID := strings.TrimSpace(cfg.ExportCOSSecretID)
	secretKey := strings.TrimSpace(cfg.ExportCOSSecretKey)
	if secretID == "" || secretKey == "" {
		return nil, errors.New("exportstore: missing COS credentials")
	}

	transport := &cos.AuthorizationTransport{
		SecretID:  secretID,
		SecretKey: secretKey,
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: parsedURL}, &http.Client{Transport: transport})

	return &cosArchive{
		client: client,
		prefix: trimPrefix(cfg.ExportCOSPrefix),
	}, nil
}

func (a *cosArchive) Store(ctx context.Context, data []byte, opts StoreOptions) (string, error) {
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
		resp, err := a.client.Object.Head(ctx, key, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err == nil {
			return key, nil
		}
		if !cos.IsNotFoundError(err) {
			return "", fmt.Errorf("head object: %w", err)
		}
	}

	options := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{},
	}
	if ct := detectContentType(opts.Extension); ct != "" {
		options.ObjectPutHeaderOptions.ContentType = ct
	}

	resp, err := a.client.Object.Put(
		ctx,
		key,
		bytes.NewReader(data),
		options,
	)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return key, nil
}

var _ Archive = (*cosArchive)(nil)
