package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"builty/internal/entity"
)

// newContractServer 用本地存储充当符合 REST 契约的远端后端。
func newContractServer(t *testing.T) (*httptest.Server, *LocalStore) {
	t.Helper()
	backing, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating backing store: %v", err)
	}

	writeJSON := func(w http.ResponseWriter, status int, payload interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}
	writeErr := func(w http.ResponseWriter, status int, message string) {
		writeJSON(w, status, map[string]string{"message": message})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /records/{collection}", func(w http.ResponseWriter, r *http.Request) {
		records, err := backing.GetAll(r.Context(), r.PathValue("collection"))
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, records)
	})
	mux.HandleFunc("POST /records/{collection}", func(w http.ResponseWriter, r *http.Request) {
		var fields entity.Record
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid payload")
			return
		}
		record, err := backing.Create(r.Context(), r.PathValue("collection"), fields)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, record)
	})
	mux.HandleFunc("GET /records/{collection}/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		record, err := backing.GetByID(r.Context(), r.PathValue("collection"), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				writeErr(w, http.StatusNotFound, "record not found")
				return
			}
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, record)
	})
	mux.HandleFunc("PUT /records/{collection}/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		var updates entity.Record
		if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid payload")
			return
		}
		record, err := backing.Update(r.Context(), r.PathValue("collection"), id, updates)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				writeErr(w, http.StatusNotFound, "record not found")
				return
			}
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, record)
	})
	mux.HandleFunc("DELETE /records/{collection}/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		deleted, err := backing.Delete(r.Context(), r.PathValue("collection"), id)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
	})
	mux.HandleFunc("POST /transaction", func(w http.ResponseWriter, r *http.Request) {
		var req transactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid payload")
			return
		}
		if req.Atomic {
			writeErr(w, http.StatusConflict, "backend cannot execute atomic batches")
			return
		}
		results, err := backing.Transaction(r.Context(), req.Operations)
		if err != nil {
			writeErr(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, transactionResponse{Results: results})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, backing
}

func TestRESTStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	server, _ := newContractServer(t)
	s := NewRESTStore(server.URL, "")

	created, err := s.Create(ctx, entity.CollectionDrivers, entity.Record{"name": "Akbar", "license": "LHR-123"})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	id, ok := created.ID()
	if !ok || id == 0 {
		t.Fatal("expected backend-assigned id")
	}

	fetched, err := s.GetByID(ctx, entity.CollectionDrivers, id)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if fetched["name"] != "Akbar" {
		t.Fatalf("unexpected record: %v", fetched)
	}

	updated, err := s.Update(ctx, entity.CollectionDrivers, id, entity.Record{"name": "Akbar Ali"})
	if err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}
	if updated["name"] != "Akbar Ali" {
		t.Fatalf("unexpected updated record: %v", updated)
	}

	all, err := s.GetAll(ctx, entity.CollectionDrivers)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 record, got %d", len(all))
	}

	deleted, err := s.Delete(ctx, entity.CollectionDrivers, id)
	if err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if !deleted {
		t.Fatal("expected deleted true")
	}
}

func TestRESTStoreMapsNotFound(t *testing.T) {
	ctx := context.Background()
	server, _ := newContractServer(t)
	s := NewRESTStore(server.URL, "")

	if _, err := s.GetByID(ctx, entity.CollectionDrivers, 404404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Update(ctx, entity.CollectionDrivers, 404404, entity.Record{"name": "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestRESTStoreTransaction(t *testing.T) {
	ctx := context.Background()
	server, backing := newContractServer(t)
	s := NewRESTStore(server.URL, "")

	if s.Atomic() {
		t.Fatal("rest store must not claim atomicity")
	}

	results, err := s.Transaction(ctx, []TxOp{
		{Action: TxCreate, Collection: entity.CollectionStations, Data: entity.Record{"code": "QTA"}},
		{Action: TxCreate, Collection: entity.CollectionStations, Data: entity.Record{"code": "PEW"}},
	})
	if err != nil {
		t.Fatalf("unexpected transaction error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	records, err := backing.GetAll(ctx, entity.CollectionStations)
	if err != nil {
		t.Fatalf("unexpected backing list error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 persisted records, got %d", len(records))
	}
}

func TestRESTStoreSendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	t.Cleanup(server.Close)

	s := NewRESTStore(server.URL, "token-123")
	if _, err := s.GetAll(context.Background(), entity.CollectionItems); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer token-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestRESTStoreSurfacesBackendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"backend cannot execute atomic batches"}`))
	}))
	t.Cleanup(server.Close)

	s := NewRESTStore(server.URL, "")
	_, err := s.Transaction(context.Background(), []TxOp{{Action: TxCreate, Collection: entity.CollectionItems, Data: entity.Record{}}})
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "backend returned 409: backend cannot execute atomic batches"; err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
