package store

import (
	"context"
	"strings"

	"builty/internal/entity"
)

// CountUsers 统计用户数量，用于首次启动引导判断。
func CountUsers(ctx context.Context, s Store) (int, error) {
	users, err := s.GetAll(ctx, entity.CollectionUsers)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

// FindUserByEmail 按邮箱（忽略大小写）查找用户记录，未找到时返回
// ErrNotFound。
func FindUserByEmail(ctx context.Context, s Store, email string) (entity.Record, error) {
	users, err := s.GetAll(ctx, entity.CollectionUsers)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		candidate, _ := user["email"].(string)
		if strings.EqualFold(candidate, email) {
			return user, nil
		}
	}
	return nil, ErrNotFound
}
