// Package dataservice binds one named collection to renderable state for a
// single screen: records, a loading flag and the last fetch error, with
// refetch-after-write semantics and an optional offline sample fallback.
package dataservice

import (
	"context"
	"sync"
	"time"

	"builty/internal/entity"
	"builty/internal/store"

	"github.com/sirupsen/logrus"
)

// SampleProvider supplies static fallback records for a collection when the
// real backend is unavailable. Registered explicitly so tests can observe
// genuine failure state by omitting it.
type SampleProvider interface {
	Sample(collection string) ([]entity.Record, bool)
}

// Binding 将一个集合绑定为界面可渲染的状态。每个已打开的界面持有自己的
// Binding，互不共享缓存。
type Binding struct {
	collection string
	store      store.Store
	samples    SampleProvider

	mu      sync.RWMutex
	records []entity.Record
	errMsg  string
	loading bool
	offline bool
}

// Option configures a Binding.
type Option func(*Binding)

// WithSamples 注入离线兜底数据源。
func WithSamples(provider SampleProvider) Option {
	return func(b *Binding) {
		b.samples = provider
	}
}

// NewBinding creates a Binding without fetching anything yet.
func NewBinding(collection string, s store.Store, opts ...Option) *Binding {
	b := &Binding{
		collection: collection,
		store:      s,
		records:    []entity.Record{},
		loading:    true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open creates a Binding and performs the initial fetch.
func Open(ctx context.Context, collection string, s store.Store, opts ...Option) *Binding {
	b := NewBinding(collection, s, opts...)
	b.Refresh(ctx)
	return b
}

// Refresh re-fetches the collection. Fetch failures never propagate to the
// caller; they land in Err and, when a sample provider is registered, flip
// the binding into offline mode with the static records substituted.
func (b *Binding) Refresh(ctx context.Context) {
	b.mu.Lock()
	b.loading = true
	b.errMsg = ""
	b.mu.Unlock()

	records, err := b.store.GetAll(ctx, b.collection)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
	if err != nil {
		logrus.WithError(err).WithField("collection", b.collection).Error("failed to fetch collection")
		b.errMsg = err.Error()
		b.offline = true
		b.records = b.fallbackRecords()
		return
	}
	b.offline = false
	if records == nil {
		records = []entity.Record{}
	}
	b.records = records
}

func (b *Binding) fallbackRecords() []entity.Record {
	if b.samples != nil {
		if sample, ok := b.samples.Sample(b.collection); ok {
			return sample
		}
	}
	return []entity.Record{}
}

// Create persists a new record and re-fetches the collection to resync
// state. In offline mode the record is appended in memory instead. The
// adapter's error is returned to the caller after logging.
func (b *Binding) Create(ctx context.Context, record entity.Record) (entity.Record, error) {
	if b.isOffline() {
		created := record.Clone()
		if created == nil {
			created = entity.Record{}
		}
		created["id"] = time.Now().UnixMilli()
		b.mu.Lock()
		b.records = append(b.records, created)
		b.mu.Unlock()
		return created, nil
	}

	created, err := b.store.Create(ctx, b.collection, record)
	if err != nil {
		logrus.WithError(err).WithField("collection", b.collection).Error("failed to create record")
		return nil, err
	}
	b.Refresh(ctx)
	return created, nil
}

// Update applies a partial update and resyncs.
func (b *Binding) Update(ctx context.Context, id int64, updates entity.Record) (entity.Record, error) {
	if b.isOffline() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, record := range b.records {
			if recordID, ok := record.ID(); ok && recordID == id {
				merged := record.Merge(updates)
				b.records[i] = merged
				return merged, nil
			}
		}
		return nil, store.ErrNotFound
	}

	updated, err := b.store.Update(ctx, b.collection, id, updates)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"collection": b.collection,
			"id":         id,
		}).Error("failed to update record")
		return nil, err
	}
	b.Refresh(ctx)
	return updated, nil
}

// Remove deletes a record and resyncs.
func (b *Binding) Remove(ctx context.Context, id int64) error {
	if b.isOffline() {
		b.mu.Lock()
		defer b.mu.Unlock()
		kept := b.records[:0]
		for _, record := range b.records {
			if recordID, ok := record.ID(); ok && recordID == id {
				continue
			}
			kept = append(kept, record)
		}
		b.records = kept
		return nil
	}

	if _, err := b.store.Delete(ctx, b.collection, id); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"collection": b.collection,
			"id":         id,
		}).Error("failed to delete record")
		return err
	}
	b.Refresh(ctx)
	return nil
}

// Records returns a copy of the most recently completed fetch.
func (b *Binding) Records() []entity.Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]entity.Record, len(b.records))
	copy(out, b.records)
	return out
}

// Err returns the last fetch error message, empty when the last fetch
// succeeded.
func (b *Binding) Err() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.errMsg
}

// Loading reports whether a fetch is in progress.
func (b *Binding) Loading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loading
}

// Offline reports whether the binding fell back to sample data.
func (b *Binding) Offline() bool {
	return b.isOffline()
}

func (b *Binding) isOffline() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.offline
}
