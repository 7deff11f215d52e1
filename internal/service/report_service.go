package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"

	"builty/internal/entity"
	"builty/internal/exportstore"
	"builty/internal/store"

	"github.com/sirupsen/logrus"
)

// ReportService 报表导出服务，封装集合数据到归档文件的导出逻辑
type ReportService struct {
	store   store.Store
	archive exportstore.Archive
}

// NewReportService 创建报表服务实例
func NewReportService(st store.Store, archive exportstore.Archive) *ReportService {
	return &ReportService{
		store:   st,
		archive: archive,
	}
}

// Export 导出指定集合的全部记录为 CSV 并归档，返回归档路径与行数。
func (s *ReportService) Export(ctx context.Context, collection string) (*entity.ExportResponse, error) {
	if !entity.KnownCollection(collection) {
		return nil, fmt.Errorf("unknown collection: %s", collection)
	}

	records, err := s.store.GetAll(ctx, collection)
	if err != nil {
		logrus.WithError(err).WithField("collection", collection).Error("export: load records failed")
		return nil, err
	}

	if collection == entity.CollectionUsers {
		records = dropCredentialFields(records)
	}

	data, err := marshalCSV(records)
	if err != nil {
		return nil, err
	}

	path, err := s.archive.Store(ctx, data, exportstore.StoreOptions{
		Collection: collection,
		Extension:  "csv",
	})
	if err != nil {
		logrus.WithError(err).WithField("collection", collection).Error("export: archive failed")
		return nil, err
	}

	return &entity.ExportResponse{
		Collection: collection,
		Path:       path,
		Rows:       len(records),
	}, nil
}

// dropCredentialFields 去除用户记录中的凭据字段，导出文件不落盘密码哈希。
func dropCredentialFields(records []entity.Record) []entity.Record {
	cleaned := make([]entity.Record, 0, len(records))
	for _, record := range records {
		clone := record.Clone()
		delete(clone, "password_hash")
		cleaned = append(cleaned, clone)
	}
	return cleaned
}

// marshalCSV 将记录序列化为 CSV。表头为所有记录键的并集，
// id 固定为第一列，其余按字典序排列，保证输出稳定。
func marshalCSV(records []entity.Record) ([]byte, error) {
	header := csvHeader(records)

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(header))
	for _, record := range records {
		for i, key := range header {
			row[i] = csvCell(record[key])
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvHeader(records []entity.Record) []string {
	seen := map[string]bool{}
	keys := make([]string, 0, 8)
	for _, record := range records {
		for key := range record {
			if key == "id" || seen[key] {
				continue
			}
			seen[key] = true
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return append([]string{"id"}, keys...)
}

func csvCell(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// JSON 解码后的数值，整数不带小数点
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
