package entity

import (
	"time"

	"builty/internal/entity/common"
)

// DbUser represents a persisted user account.
type DbUser struct {
	ID                int64          `gorm:"primarykey" json:"id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	Email             string         `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash      string         `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Name              string         `gorm:"column:name;type:varchar(255)" json:"name"`
	Role              string         `gorm:"column:role;type:varchar(50);index;not null" json:"role"`
	IsActive          bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CustomPermissions common.JSONMap `gorm:"column:custom_permissions;type:text" json:"custom_permissions,omitempty"`
}

// TableName overrides default pluralised name.
func (DbUser) TableName() string {
	return CollectionUsers
}

// SessionUser is the public projection of an authenticated user. It is what
// gets persisted as the client session and embedded in API responses; the
// password hash never leaves the data layer.
type SessionUser struct {
	ID                int64          `json:"id"`
	Email             string         `json:"email"`
	Name              string         `json:"name"`
	Role              string         `json:"role"`
	CustomPermissions common.JSONMap `json:"custom_permissions,omitempty"`
}

// SessionUserFromRecord projects a raw users-collection record into the
// session shape. Returns nil when the record is nil or carries no id.
func SessionUserFromRecord(record Record) *SessionUser {
	if record == nil {
		return nil
	}
	id, ok := record.ID()
	if !ok || id == 0 {
		return nil
	}
	user := &SessionUser{ID: id}
	user.Email, _ = record["email"].(string)
	user.Name, _ = record["name"].(string)
	user.Role, _ = record["role"].(string)
	if perms, ok := record["custom_permissions"].(map[string]interface{}); ok {
		user.CustomPermissions = common.JSONMap(perms)
	}
	return user
}

type AuthStatusResponse struct {
	HasUser bool `json:"has_user"`
}

type AuthLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthRegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      SessionUser `json:"user"`
}

type ExportResponse struct {
	Collection string `json:"collection"`
	Path       string `json:"path"`
	Rows       int    `json:"rows"`
}
