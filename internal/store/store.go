// Package store presents one asynchronous CRUD contract over exactly one
// active backend: a local JSON-file store, a remote REST backend, or a hosted
// relational database. The backend is chosen once at startup by New.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"builty/internal/entity"
)

const (
	// ModeLocal 表示本地 JSON 文件持久化。
	ModeLocal = "local"
	// ModeREST 表示远程 REST 后端。
	ModeREST = "rest"
	// ModeDatabase 表示托管关系数据库后端。
	ModeDatabase = "database"
)

// ErrNotFound indicates the referenced record id does not exist.
var ErrNotFound = errors.New("record not found")

// Batch operation actions.
const (
	TxCreate = "create"
	TxUpdate = "update"
	TxDelete = "delete"
)

// TxOp is one step of a batch. ID is required for update/delete, Data for
// create/update.
type TxOp struct {
	Action     string        `json:"action"`
	Collection string        `json:"collection"`
	ID         int64         `json:"id,omitempty"`
	Data       entity.Record `json:"data,omitempty"`
}

// Store 是统一的集合 CRUD 契约。Transaction 按序执行各步骤；只有
// Atomic 返回 true 的后端才保证整个批次的原子性，其余后端在中途失败时
// 保留已提交的步骤。
type Store interface {
	GetAll(ctx context.Context, collection string) ([]entity.Record, error)
	GetByID(ctx context.Context, collection string, id int64) (entity.Record, error)
	Create(ctx context.Context, collection string, fields entity.Record) (entity.Record, error)
	Update(ctx context.Context, collection string, id int64, updates entity.Record) (entity.Record, error)
	Delete(ctx context.Context, collection string, id int64) (bool, error)
	Transaction(ctx context.Context, ops []TxOp) ([]entity.Record, error)
	Atomic() bool
}

var (
	idMu   sync.Mutex
	lastID int64
)

// newID derives a record id from the current wall clock, matching the
// original data's millisecond ids. Successive calls within the same
// millisecond are bumped so ids stay distinct within one process.
func newID() int64 {
	idMu.Lock()
	defer idMu.Unlock()
	id := time.Now().UnixMilli()
	if id <= lastID {
		id = lastID + 1
	}
	lastID = id
	return id
}

// applyOp dispatches one batch step against a store.
func applyOp(ctx context.Context, s Store, op TxOp) (entity.Record, error) {
	switch op.Action {
	case TxCreate:
		return s.Create(ctx, op.Collection, op.Data)
	case TxUpdate:
		return s.Update(ctx, op.Collection, op.ID, op.Data)
	case TxDelete:
		deleted, err := s.Delete(ctx, op.Collection, op.ID)
		if err != nil {
			return nil, err
		}
		return entity.Record{"id": op.ID, "deleted": deleted}, nil
	default:
		return nil, fmt.Errorf("unsupported batch action: %s", op.Action)
	}
}

// applySequential runs the steps in listed order, stopping at the first
// failure. Results for completed steps are returned alongside the error.
func applySequential(ctx context.Context, s Store, ops []TxOp) ([]entity.Record, error) {
	results := make([]entity.Record, 0, len(ops))
	for i, op := range ops {
		result, err := applyOp(ctx, s, op)
		if err != nil {
			return results, fmt.Errorf("batch step %d (%s %s): %w", i, op.Action, op.Collection, err)
		}
		results = append(results, result)
	}
	return results, nil
}
