package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"builty/internal/entity"
)

// LocalStore persists each collection as one JSON array file under a data
// directory, mirroring the original per-collection browser storage keys.
// Writes are serialized per collection so overlapping read-modify-write
// cycles cannot drop an update.
type LocalStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocalStore creates a LocalStore rooted at dir. The directory is created
// if it does not exist.
func NewLocalStore(dir string) (*LocalStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "datas/collections"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &LocalStore{dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

func (s *LocalStore) collectionLock(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[collection]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[collection] = lock
	}
	return lock
}

func (s *LocalStore) filePath(collection string) (string, error) {
	cleaned := sanitizeCollection(collection)
	if cleaned == "" {
		return "", fmt.Errorf("invalid collection name: %q", collection)
	}
	return filepath.Join(s.dir, cleaned+".json"), nil
}

// readCollection loads a collection file, defaulting to an empty slice when
// the file does not exist yet.
func (s *LocalStore) readCollection(collection string) ([]entity.Record, error) {
	path, err := s.filePath(collection)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []entity.Record{}, nil
		}
		return nil, fmt.Errorf("read collection %s: %w", collection, err)
	}
	if len(raw) == 0 {
		return []entity.Record{}, nil
	}
	var records []entity.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", collection, err)
	}
	return records, nil
}

func (s *LocalStore) writeCollection(collection string, records []entity.Record) error {
	path, err := s.filePath(collection)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", collection, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write collection %s: %w", collection, err)
	}
	return nil
}

func (s *LocalStore) GetAll(ctx context.Context, collection string) ([]entity.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()
	return s.readCollection(collection)
}

func (s *LocalStore) GetByID(ctx context.Context, collection string, id int64) (entity.Record, error) {
	records, err := s.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if recordID, ok := record.ID(); ok && recordID == id {
			return record, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%d", ErrNotFound, collection, id)
}

func (s *LocalStore) Create(ctx context.Context, collection string, fields entity.Record) (entity.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.readCollection(collection)
	if err != nil {
		return nil, err
	}
	record := fields.Clone()
	if record == nil {
		record = entity.Record{}
	}
	record["id"] = newID()
	records = append(records, record)
	if err := s.writeCollection(collection, records); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *LocalStore) Update(ctx context.Context, collection string, id int64, updates entity.Record) (entity.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.readCollection(collection)
	if err != nil {
		return nil, err
	}
	for i, record := range records {
		recordID, ok := record.ID()
		if !ok || recordID != id {
			continue
		}
		merged := record.Merge(updates)
		records[i] = merged
		if err := s.writeCollection(collection, records); err != nil {
			return nil, err
		}
		return merged, nil
	}
	return nil, fmt.Errorf("%w: %s/%d", ErrNotFound, collection, id)
}

// Delete removes the record with the given id. Deleting an id that does not
// exist is not an error.
func (s *LocalStore) Delete(ctx context.Context, collection string, id int64) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}
	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.readCollection(collection)
	if err != nil {
		return false, err
	}
	kept := records[:0]
	for _, record := range records {
		if recordID, ok := record.ID(); ok && recordID == id {
			continue
		}
		kept = append(kept, record)
	}
	if err := s.writeCollection(collection, kept); err != nil {
		return false, err
	}
	return true, nil
}

// Transaction executes the steps in order with no rollback; a mid-sequence
// failure leaves prior steps committed.
func (s *LocalStore) Transaction(ctx context.Context, ops []TxOp) ([]entity.Record, error) {
	return applySequential(ctx, s, ops)
}

func (s *LocalStore) Atomic() bool { return false }

func sanitizeCollection(value string) string {
	value = strings.TrimSpace(value)
	builder := strings.Builder{}
	builder.Grow(len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			builder.WriteByte(ch)
		case ch >= 'A' && ch <= 'Z':
			builder.WriteByte(ch + 32)
		case ch == '-', ch == '_':
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}

var _ Store = (*LocalStore)(nil)
