package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"builty/internal/entity"
)

// restStore talks to a remote backend implementing the collection REST
// contract: GET/POST /records/{collection}, GET/PUT/DELETE
// /records/{collection}/{id} and POST /transaction, all JSON bodies.
// Failures surface as errors carrying the HTTP status and any message the
// backend returned.
type restStore struct {
	baseURL string
	token   string
	client  *http.Client
}

// transactionRequest 是 POST /transaction 的请求体。
type transactionRequest struct {
	Operations []TxOp `json:"operations"`
	Atomic     bool   `json:"atomic"`
}

type transactionResponse struct {
	Results []entity.Record `json:"results"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

// NewRESTStore 创建 REST 后端客户端。baseURL 形如 http://host:port/api，
// token 非空时以 Bearer 方式附加到每个请求。
func NewRESTStore(baseURL, token string) *restStore {
	return &restStore{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		client:  http.DefaultClient,
	}
}

func (s *restStore) collectionURL(collection string) string {
	return s.baseURL + "/records/" + url.PathEscape(collection)
}

func (s *restStore) recordURL(collection string, id int64) string {
	return s.collectionURL(collection) + "/" + strconv.FormatInt(id, 10)
}

// doJSON 发送请求并解码 JSON 响应。404 映射为 ErrNotFound，其余非 2xx
// 状态映射为带后端消息的错误。
func (s *restStore) doJSON(ctx context.Context, method, requestURL string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := backendMessage(raw)
		if resp.StatusCode == http.StatusNotFound {
			if message != "" {
				return fmt.Errorf("%w: %s", ErrNotFound, message)
			}
			return ErrNotFound
		}
		if message != "" {
			return fmt.Errorf("backend returned %d: %s", resp.StatusCode, message)
		}
		return fmt.Errorf("backend returned %d", resp.StatusCode)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func backendMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

func (s *restStore) GetAll(ctx context.Context, collection string) ([]entity.Record, error) {
	var records []entity.Record
	if err := s.doJSON(ctx, http.MethodGet, s.collectionURL(collection), nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []entity.Record{}
	}
	return records, nil
}

func (s *restStore) GetByID(ctx context.Context, collection string, id int64) (entity.Record, error) {
	var record entity.Record
	if err := s.doJSON(ctx, http.MethodGet, s.recordURL(collection, id), nil, &record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *restStore) Create(ctx context.Context, collection string, fields entity.Record) (entity.Record, error) {
	var record entity.Record
	if err := s.doJSON(ctx, http.MethodPost, s.collectionURL(collection), fields, &record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *restStore) Update(ctx context.Context, collection string, id int64, updates entity.Record) (entity.Record, error) {
	var record entity.Record
	if err := s.doJSON(ctx, http.MethodPut, s.recordURL(collection, id), updates, &record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *restStore) Delete(ctx context.Context, collection string, id int64) (bool, error) {
	var result deleteResponse
	if err := s.doJSON(ctx, http.MethodDelete, s.recordURL(collection, id), nil, &result); err != nil {
		return false, err
	}
	return result.Deleted, nil
}

// Transaction 将整个批次转发给后端的 /transaction 端点。对本客户端而言
// 批次不保证原子性，由后端按序执行。
func (s *restStore) Transaction(ctx context.Context, ops []TxOp) ([]entity.Record, error) {
	var result transactionResponse
	request := transactionRequest{Operations: ops}
	if err := s.doJSON(ctx, http.MethodPost, s.baseURL+"/transaction", request, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

func (s *restStore) Atomic() bool { return false }

var _ Store = (*restStore)(nil)
