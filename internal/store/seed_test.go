package store

import (
	"context"
	"strings"
	"testing"

	"builty/internal/entity"
)

func TestSeedDefaultsBootstrapsEmptyStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	if err := SeedDefaults(ctx, s); err != nil {
		t.Fatalf("unexpected seed error: %v", err)
	}

	users, err := s.GetAll(ctx, entity.CollectionUsers)
	if err != nil {
		t.Fatalf("unexpected error loading users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 seeded user, got %d", len(users))
	}
	if email, _ := users[0]["email"].(string); email != DefaultAdminEmail {
		t.Fatalf("unexpected seeded email %q", email)
	}

	stations, err := s.GetAll(ctx, entity.CollectionStations)
	if err != nil {
		t.Fatalf("unexpected error loading stations: %v", err)
	}
	if len(stations) != 5 {
		t.Fatalf("expected 5 seeded stations, got %d", len(stations))
	}
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	if err := SeedDefaults(ctx, s); err != nil {
		t.Fatalf("unexpected seed error: %v", err)
	}
	if err := SeedDefaults(ctx, s); err != nil {
		t.Fatalf("unexpected repeat seed error: %v", err)
	}

	users, err := s.GetAll(ctx, entity.CollectionUsers)
	if err != nil {
		t.Fatalf("unexpected error loading users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected seeding to stay idempotent, got %d users", len(users))
	}
}

// 演示管理员被删除后不得在下次启动时带着已知口令复活。
func TestSeedDoesNotReinstateDeletedAdmin(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	if err := SeedDefaults(ctx, s); err != nil {
		t.Fatalf("unexpected seed error: %v", err)
	}
	if _, err := s.Create(ctx, entity.CollectionUsers, entity.Record{
		"email":     "real@corp.com",
		"name":      "Real Admin",
		"role":      "admin",
		"is_active": true,
	}); err != nil {
		t.Fatalf("unexpected error creating replacement admin: %v", err)
	}

	admin, err := FindUserByEmail(ctx, s, DefaultAdminEmail)
	if err != nil {
		t.Fatalf("unexpected lookup error: %v", err)
	}
	id, ok := admin.ID()
	if !ok {
		t.Fatal("expected seeded admin to carry an id")
	}
	if _, err := s.Delete(ctx, entity.CollectionUsers, id); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}

	if err := SeedDefaults(ctx, s); err != nil {
		t.Fatalf("unexpected reseed error: %v", err)
	}

	users, err := s.GetAll(ctx, entity.CollectionUsers)
	if err != nil {
		t.Fatalf("unexpected error loading users: %v", err)
	}
	for _, user := range users {
		email, _ := user["email"].(string)
		if strings.EqualFold(email, DefaultAdminEmail) {
			t.Fatal("deleted demo admin must not be reseeded")
		}
	}
	if len(users) != 1 {
		t.Fatalf("expected only the replacement admin, got %d users", len(users))
	}
}
