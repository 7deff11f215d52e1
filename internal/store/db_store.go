package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"builty/internal/entity"

	"gorm.io/gorm"
)

// dbStore implements Store on a relational database through GORM. Rows are
// read and written as generic maps against the named table, restricted to
// the known collection catalog.
type dbStore struct {
	db *gorm.DB
}

// NewDatabaseStore wraps an open GORM handle as a Store.
func NewDatabaseStore(db *gorm.DB) (*dbStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is nil")
	}
	return &dbStore{db: db}, nil
}

func checkCollection(collection string) error {
	if !entity.KnownCollection(collection) {
		return fmt.Errorf("unknown collection: %q", collection)
	}
	return nil
}

func (s *dbStore) GetAll(ctx context.Context, collection string) ([]entity.Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	var rows []map[string]interface{}
	if err := s.db.WithContext(ctx).Table(collection).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select %s: %w", collection, err)
	}
	records := make([]entity.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, entity.Record(row))
	}
	return records, nil
}

func (s *dbStore) GetByID(ctx context.Context, collection string, id int64) (entity.Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	var row map[string]interface{}
	err := s.db.WithContext(ctx).Table(collection).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s/%d", ErrNotFound, collection, id)
		}
		return nil, fmt.Errorf("select %s/%d: %w", collection, id, err)
	}
	return entity.Record(row), nil
}

// Create inserts the fields as a new row. The id is assigned here before the
// insert because map-based inserts do not report generated keys uniformly
// across the supported drivers.
func (s *dbStore) Create(ctx context.Context, collection string, fields entity.Record) (entity.Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	row := map[string]interface{}(fields.Clone())
	if row == nil {
		row = map[string]interface{}{}
	}
	if _, ok := entity.Record(row).ID(); !ok {
		row["id"] = newID()
	}
	now := time.Now().UTC()
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = now
	}
	row["updated_at"] = now

	if err := s.db.WithContext(ctx).Table(collection).Create(row).Error; err != nil {
		return nil, fmt.Errorf("insert %s: %w", collection, err)
	}
	return entity.Record(row), nil
}

func (s *dbStore) Update(ctx context.Context, collection string, id int64, updates entity.Record) (entity.Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	values := map[string]interface{}(updates.Clone())
	if values == nil {
		values = map[string]interface{}{}
	}
	delete(values, "id")
	values["updated_at"] = time.Now().UTC()

	result := s.db.WithContext(ctx).Table(collection).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return nil, fmt.Errorf("update %s/%d: %w", collection, id, result.Error)
	}
	if result.RowsAffected == 0 {
		// 区分“无变化”与“行不存在”：再查一次。
		if _, err := s.GetByID(ctx, collection, id); err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, collection, id)
}

// Delete removes the row if present; deleting a missing id succeeds.
func (s *dbStore) Delete(ctx context.Context, collection string, id int64) (bool, error) {
	if err := checkCollection(collection); err != nil {
		return false, err
	}
	model := entity.ModelFor(collection)
	if model == nil {
		return false, fmt.Errorf("unknown collection: %q", collection)
	}
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return false, fmt.Errorf("delete %s/%d: %w", collection, id, result.Error)
	}
	return true, nil
}

// Transaction runs the whole batch inside one database transaction; any step
// failure rolls back every prior step. This is the only backend offering
// real atomicity.
func (s *dbStore) Transaction(ctx context.Context, ops []TxOp) ([]entity.Record, error) {
	var results []entity.Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := &dbStore{db: tx}
		batch, err := applySequential(ctx, inner, ops)
		results = batch
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *dbStore) Atomic() bool { return true }

var _ Store = (*dbStore)(nil)
