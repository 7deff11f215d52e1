package store

import (
	"context"
	"fmt"

	"builty/internal/auth"
	"builty/internal/entity"
	"builty/internal/permission"
)

// DefaultAdminEmail 是初始管理员账号。首次启动且用户集合为空时创建。
const DefaultAdminEmail = "admin@builty.com"

const defaultAdminPassword = "admin123"

// SeedDefaults ensures the bootstrap admin user and the starter master rows
// exist. Collections that already contain records are left untouched.
func SeedDefaults(ctx context.Context, s Store) error {
	if s == nil {
		return nil
	}

	if err := seedAdminUser(ctx, s); err != nil {
		return err
	}

	seeds := map[string][]entity.Record{
		entity.CollectionStations: {
			{"code": "LHE", "name": "Lahore"},
			{"code": "KHI", "name": "Karachi"},
			{"code": "ISL", "name": "Islamabad"},
			{"code": "MLT", "name": "Multan"},
			{"code": "FSD", "name": "Faisalabad"},
		},
		entity.CollectionBiltyTypes: {
			{"code": "TP", "name": "To Pay"},
			{"code": "PD", "name": "Paid"},
			{"code": "TB", "name": "To Bill"},
		},
		entity.CollectionExpenses: {
			{"code": "EXP01", "name": "Fuel Expense"},
			{"code": "EXP02", "name": "Toll Tax"},
			{"code": "EXP03", "name": "Loading/Unloading"},
			{"code": "EXP04", "name": "Repair & Maintenance"},
		},
	}

	for collection, records := range seeds {
		if err := seedCollection(ctx, s, collection, records); err != nil {
			return err
		}
	}
	return nil
}

// seedAdminUser 仅在用户集合为空时创建初始管理员。集合一旦有记录即视为
// 已有管理员接管，不再补种演示账号。
func seedAdminUser(ctx context.Context, s Store) error {
	users, err := s.GetAll(ctx, entity.CollectionUsers)
	if err != nil {
		return fmt.Errorf("seed: load users: %w", err)
	}
	if len(users) > 0 {
		return nil
	}

	hash, err := auth.HashPassword(defaultAdminPassword)
	if err != nil {
		return fmt.Errorf("seed: hash admin password: %w", err)
	}
	_, err = s.Create(ctx, entity.CollectionUsers, entity.Record{
		"email":         DefaultAdminEmail,
		"password_hash": hash,
		"name":          "Administrator",
		"role":          permission.RoleAdmin,
		"is_active":     true,
	})
	if err != nil {
		return fmt.Errorf("seed: create admin user: %w", err)
	}
	return nil
}

func seedCollection(ctx context.Context, s Store, collection string, records []entity.Record) error {
	existing, err := s.GetAll(ctx, collection)
	if err != nil {
		return fmt.Errorf("seed: load %s: %w", collection, err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, record := range records {
		if _, err := s.Create(ctx, collection, record); err != nil {
			return fmt.Errorf("seed: create %s row: %w", collection, err)
		}
	}
	return nil
}
