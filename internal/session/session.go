// Package session holds the process-wide authenticated-user state: exactly
// one persisted session per data directory, rehydrated at startup, replaced
// on login and destroyed on logout.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"builty/internal/entity"
	"builty/internal/permission"

	"github.com/sirupsen/logrus"
)

// FileStore 将会话投影持久化为固定路径下的单个 JSON 文件。
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore 创建会话文件存储。
func NewFileStore(path string) *FileStore {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "datas/session.json"
	}
	return &FileStore{path: path}
}

// Load 读取持久化的会话。文件不存在返回 (nil, nil)；内容无法解析返回错误，
// 由调用方决定丢弃。
func (s *FileStore) Load() (*entity.SessionUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var user entity.SessionUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &user, nil
}

// Save 覆盖写入会话。
func (s *FileStore) Save(user *entity.SessionUser) error {
	if user == nil {
		return errors.New("session user is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear 删除持久化会话。不存在时不报错。
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Manager owns the current-user slot. Login and logout are last-write-wins.
type Manager struct {
	store *FileStore

	mu      sync.RWMutex
	current *entity.SessionUser
	loading bool
}

// NewManager rehydrates the session from the store. An unparseable persisted
// session is discarded rather than surfaced; either way loading ends false.
func NewManager(store *FileStore) *Manager {
	m := &Manager{store: store, loading: true}

	user, err := store.Load()
	if err != nil {
		logrus.WithError(err).Warn("discarding unreadable session")
		if clearErr := store.Clear(); clearErr != nil {
			logrus.WithError(clearErr).Warn("failed to clear bad session")
		}
		user = nil
	}

	m.mu.Lock()
	m.current = user
	m.loading = false
	m.mu.Unlock()
	return m
}

// Login stores the user projection as the session, overwriting any prior
// session. Credential verification happens before this call; the manager
// trusts whatever projection it is handed.
func (m *Manager) Login(user entity.SessionUser) error {
	if err := m.store.Save(&user); err != nil {
		return err
	}
	m.mu.Lock()
	m.current = &user
	m.mu.Unlock()
	return nil
}

// Logout clears the persisted session and the current-user slot.
func (m *Manager) Logout() error {
	if err := m.store.Clear(); err != nil {
		return err
	}
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	return nil
}

// Current returns a copy of the authenticated user, or nil.
func (m *Manager) Current() *entity.SessionUser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	user := *m.current
	return &user
}

// IsAuthenticated 等价于“存在会话”。
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

// Loading reports whether the startup session check is still in progress.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Subject derives the permission subject for the current user; nil when
// unauthenticated.
func (m *Manager) Subject() *permission.Subject {
	user := m.Current()
	if user == nil {
		return nil
	}
	return &permission.Subject{
		Role:              user.Role,
		CustomPermissions: permission.OverridesFrom(user.CustomPermissions),
	}
}

// Permissions resolves the capability view of the current user for a module.
// Safe with no authenticated user, which yields the all-denied view.
func (m *Manager) Permissions(module string) permission.ModulePermissions {
	return permission.For(m.Subject(), module)
}
