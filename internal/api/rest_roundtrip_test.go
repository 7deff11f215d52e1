package api

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"builty/internal/entity"
	"builty/internal/store"
)

// 验证 rest 模式客户端对着本服务实现能完成完整的集合往返。
func TestRESTStoreAgainstLiveServer(t *testing.T) {
	ctx := context.Background()
	r := newTestRouter(t)
	token := adminToken(t, r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	client := store.NewRESTStore(server.URL+"/api", token)

	created, err := client.Create(ctx, entity.CollectionBookings, entity.Record{
		"bilty_no":  "B-1001",
		"from":      "LHE",
		"to":        "KHI",
		"freight":   42000,
		"consignee": "Karachi Traders",
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	id, ok := created.ID()
	if !ok || id == 0 {
		t.Fatal("expected server-assigned id")
	}

	updated, err := client.Update(ctx, entity.CollectionBookings, id, entity.Record{"freight": 45000})
	if err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}
	if updated["bilty_no"] != "B-1001" {
		t.Fatal("update must preserve untouched fields")
	}

	all, err := client.GetAll(ctx, entity.CollectionBookings)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(all))
	}

	results, err := client.Transaction(ctx, []store.TxOp{
		{Action: store.TxCreate, Collection: entity.CollectionChallans, Data: entity.Record{"challan_no": "C-1"}},
		{Action: store.TxDelete, Collection: entity.CollectionBookings, ID: id},
	})
	if err != nil {
		t.Fatalf("unexpected transaction error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if _, err := client.GetByID(ctx, entity.CollectionBookings, id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after batch delete, got %v", err)
	}

	if _, err := client.GetAll(ctx, "payroll"); err == nil {
		t.Fatal("expected denial for unknown collection")
	}
}

// 未带 token 的 rest 客户端必须被拒绝
func TestRESTStoreRejectedWithoutToken(t *testing.T) {
	r := newTestRouter(t)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	client := store.NewRESTStore(server.URL+"/api", "")
	if _, err := client.GetAll(context.Background(), entity.CollectionStations); err == nil {
		t.Fatal("expected error without bearer token")
	}
}
