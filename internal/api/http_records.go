package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"builty/internal/auth"
	"builty/internal/entity"
	"builty/internal/permission"
	"builty/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const recordTimeout = 10 * time.Second

// scrubRecord 去除用户集合记录中的口令散列后再返回给客户端
func scrubRecord(collection string, record entity.Record) entity.Record {
	if collection != entity.CollectionUsers || record == nil {
		return record
	}
	clean := record.Clone()
	delete(clean, "password_hash")
	return clean
}

func scrubRecords(collection string, records []entity.Record) []entity.Record {
	if collection != entity.CollectionUsers {
		return records
	}
	out := make([]entity.Record, len(records))
	for i, record := range records {
		out[i] = scrubRecord(collection, record)
	}
	return out
}

// prepareUserFields 将用户集合写入中的明文 password 字段转为散列存储
func prepareUserFields(collection string, fields entity.Record) (entity.Record, error) {
	if collection != entity.CollectionUsers || fields == nil {
		return fields, nil
	}
	password, ok := fields["password"].(string)
	if !ok || password == "" {
		return fields, nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	prepared := fields.Clone()
	delete(prepared, "password")
	prepared["password_hash"] = hash
	return prepared, nil
}

// resolveCollection 校验路由参数指向已知集合
func resolveCollection(c *gin.Context) (string, bool) {
	collection := c.Param("collection")
	if !entity.KnownCollection(collection) {
		NotFound(c, ErrCodeCollectionNotFound, "unknown collection: "+collection)
		return "", false
	}
	return collection, true
}

func resolveRecordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		BadRequest(c, ErrCodeInvalidRequest, "invalid record id")
		return 0, false
	}
	return id, true
}

// ListRecords GET /api/records/:collection
func (h *HTTPHandler) ListRecords(c *gin.Context) {
	collection, ok := resolveCollection(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), recordTimeout)
	defer cancel()

	records, err := h.store.GetAll(ctx, collection)
	if err != nil {
		logrus.WithError(err).WithField("collection", collection).Error("failed to list records")
		InternalError(c, "failed to load records")
		return
	}
	c.JSON(http.StatusOK, scrubRecords(collection, records))
}

// GetRecord GET /api/records/:collection/:id
func (h *HTTPHandler) GetRecord(c *gin.Context) {
	collection, ok := resolveCollection(c)
	if !ok {
		return
	}
	id, ok := resolveRecordID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), recordTimeout)
	defer cancel()

	record, err := h.store.GetByID(ctx, collection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, ErrCodeRecordNotFound, "record not found")
			return
		}
		logrus.WithError(err).WithField("collection", collection).Error("failed to load record")
		InternalError(c, "failed to load record")
		return
	}
	c.JSON(http.StatusOK, scrubRecord(collection, record))
}

// CreateRecord POST /api/records/:collection
func (h *HTTPHandler) CreateRecord(c *gin.Context) {
	collection, ok := resolveCollection(c)
	if !ok {
		return
	}

	var fields entity.Record
	if err := c.ShouldBindJSON(&fields); err != nil {
		InvalidPayload(c)
		return
	}

	fields, err := prepareUserFields(collection, fields)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			BadRequest(c, ErrCodeInvalidRequest, err.Error())
			return
		}
		logrus.WithError(err).Error("failed to hash password")
		InternalError(c, "failed to create record")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), recordTimeout)
	defer cancel()

	record, err := h.store.Create(ctx, collection, fields)
	if err != nil {
		logrus.WithError(err).WithField("collection", collection).Error("failed to create record")
		InternalError(c, "failed to create record")
		return
	}
	c.JSON(http.StatusCreated, scrubRecord(collection, record))
}

// UpdateRecord PUT /api/records/:collection/:id
func (h *HTTPHandler) UpdateRecord(c *gin.Context) {
	collection, ok := resolveCollection(c)
	if !ok {
		return
	}
	id, ok := resolveRecordID(c)
	if !ok {
		return
	}

	var updates entity.Record
	if err := c.ShouldBindJSON(&updates); err != nil {
		InvalidPayload(c)
		return
	}

	updates, err := prepareUserFields(collection, updates)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			BadRequest(c, ErrCodeInvalidRequest, err.Error())
			return
		}
		logrus.WithError(err).Error("failed to hash password")
		InternalError(c, "failed to update record")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), recordTimeout)
	defer cancel()

	record, err := h.store.Update(ctx, collection, id, updates)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, ErrCodeRecordNotFound, "record not found")
			return
		}
		logrus.WithError(err).WithField("collection", collection).Error("failed to update record")
		InternalError(c, "failed to update record")
		return
	}
	c.JSON(http.StatusOK, scrubRecord(collection, record))
}

// DeleteRecord DELETE /api/records/:collection/:id
//
// 删除不存在的记录同样返回成功，保持幂等。
func (h *HTTPHandler) DeleteRecord(c *gin.Context) {
	collection, ok := resolveCollection(c)
	if !ok {
		return
	}
	id, ok := resolveRecordID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), recordTimeout)
	defer cancel()

	deleted, err := h.store.Delete(ctx, collection, id)
	if err != nil {
		logrus.WithError(err).WithField("collection", collection).Error("failed to delete record")
		InternalError(c, "failed to delete record")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// BatchRequest 批量操作请求体。Atomic 为 true 时要求后端具备事务能力。
type BatchRequest struct {
	Operations []store.TxOp `json:"operations" binding:"required"`
	Atomic     bool         `json:"atomic"`
}

// BatchResponse 批量操作响应
type BatchResponse struct {
	Results []entity.Record `json:"results"`
}

// Batch POST /api/transaction
func (h *HTTPHandler) Batch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}
	if len(req.Operations) == 0 {
		MissingField(c, "operations")
		return
	}

	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}
	for _, op := range req.Operations {
		if !entity.KnownCollection(op.Collection) {
			NotFound(c, ErrCodeCollectionNotFound, "unknown collection: "+op.Collection)
			return
		}
		action := actionForBatch(op.Action)
		if action == "" {
			BadRequest(c, ErrCodeInvalidRequest, "unsupported batch action: "+op.Action)
			return
		}
		if !permission.Has(user.Subject(), op.Collection, action) {
			Forbidden(c, "permission denied for "+op.Collection+"."+action)
			return
		}
	}

	// 原子批次在不支持事务的后端上直接拒绝，避免部分提交
	if req.Atomic && !h.store.Atomic() {
		ErrorResponse(c, http.StatusConflict, ErrCodeAtomicUnsupported,
			"active backend cannot execute atomic batches")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), recordTimeout)
	defer cancel()

	results, err := h.store.Transaction(ctx, req.Operations)
	for i := range results {
		if i < len(req.Operations) {
			results[i] = scrubRecord(req.Operations[i].Collection, results[i])
		}
	}
	if err != nil {
		logrus.WithError(err).Error("batch execution failed")
		ErrorResponseWithDetails(c, http.StatusUnprocessableEntity, ErrCodeInvalidRequest,
			err.Error(), BatchResponse{Results: results})
		return
	}
	c.JSON(http.StatusOK, BatchResponse{Results: results})
}
