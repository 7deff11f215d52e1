package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"builty/internal/config"
	"builty/internal/entity"
	"builty/internal/exportstore"
	"builty/internal/permission"
	"builty/internal/store"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		JWTSecret:            "test-secret",
		JWTIssuer:            "builty-test",
		JWTExpirationMinutes: 30,
	}

	st, err := store.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	if err := store.SeedDefaults(context.Background(), st); err != nil {
		t.Fatalf("unexpected seed error: %v", err)
	}

	archive, err := exportstore.NewLocalArchive(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating archive: %v", err)
	}

	handler, err := NewHTTPHandler(cfg, st, archive)
	if err != nil {
		t.Fatalf("unexpected error creating handler: %v", err)
	}

	r := gin.New()
	apiGroup := r.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.GET("/status", handler.AuthStatus)
	authGroup.POST("/login", handler.Login)
	authGroup.GET("/me", handler.AuthMiddleware(), handler.Me)

	protected := apiGroup.Group("")
	protected.Use(handler.AuthMiddleware())
	protected.GET("/permissions", handler.MyPermissions)
	protected.POST("/transaction", handler.Batch)

	records := protected.Group("/records/:collection")
	records.Use(handler.RequireCollectionPermission())
	records.GET("", handler.ListRecords)
	records.POST("", handler.CreateRecord)
	records.GET("/:id", handler.GetRecord)
	records.PUT("/:id", handler.UpdateRecord)
	records.DELETE("/:id", handler.DeleteRecord)

	reports := protected.Group("/reports")
	reports.Use(handler.RequirePermission("reports", permission.ActionExport))
	reports.POST("/:collection/export", handler.ExportCollection)

	return r
}

func perform(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("unexpected marshal error: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func loginAs(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	w := perform(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", w.Code, w.Body.String())
	}
	var resp entity.AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	return resp.Token
}

func adminToken(t *testing.T, r *gin.Engine) string {
	t.Helper()
	return loginAs(t, r, store.DefaultAdminEmail, "admin123")
}

// createViewer 以管理员身份建一个 viewer 账号并返回其 token
func createViewer(t *testing.T, r *gin.Engine, admin string) string {
	t.Helper()
	w := perform(t, r, http.MethodPost, "/api/records/users", admin, entity.Record{
		"email":     "viewer@builty.com",
		"password":  "viewer-pass",
		"name":      "Viewer",
		"role":      permission.RoleViewer,
		"is_active": true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("creating viewer failed with %d: %s", w.Code, w.Body.String())
	}
	var created entity.Record
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if _, exists := created["password_hash"]; exists {
		t.Fatal("password hash must never reach the client")
	}
	return loginAs(t, r, "viewer@builty.com", "viewer-pass")
}

// createOperator 以管理员身份建一个 operator 账号并返回其 token
func createOperator(t *testing.T, r *gin.Engine, admin string) string {
	t.Helper()
	w := perform(t, r, http.MethodPost, "/api/records/users", admin, entity.Record{
		"email":     "operator@builty.com",
		"password":  "operator-pass",
		"name":      "Operator",
		"role":      permission.RoleOperator,
		"is_active": true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("creating operator failed with %d: %s", w.Code, w.Body.String())
	}
	return loginAs(t, r, "operator@builty.com", "operator-pass")
}

func TestAuthStatusReportsSeededAdmin(t *testing.T) {
	r := newTestRouter(t)
	w := perform(t, r, http.MethodGet, "/api/auth/status", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp entity.AuthStatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if !resp.HasUser {
		t.Fatal("expected seeded admin to be reported")
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	r := newTestRouter(t)
	w := perform(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    store.DefaultAdminEmail,
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRecordsRequireAuthentication(t *testing.T) {
	r := newTestRouter(t)
	w := perform(t, r, http.MethodGet, "/api/records/stations", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminRecordLifecycle(t *testing.T) {
	r := newTestRouter(t)
	token := adminToken(t, r)

	w := perform(t, r, http.MethodPost, "/api/records/drivers", token, entity.Record{
		"name":    "Akbar",
		"license": "LHR-123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed with %d: %s", w.Code, w.Body.String())
	}
	var created entity.Record
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	id, ok := created.ID()
	if !ok {
		t.Fatal("expected created record to carry an id")
	}

	w = perform(t, r, http.MethodPut, recordPath("drivers", id), token, entity.Record{"name": "Akbar Ali"})
	if w.Code != http.StatusOK {
		t.Fatalf("update failed with %d: %s", w.Code, w.Body.String())
	}

	w = perform(t, r, http.MethodGet, recordPath("drivers", id), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get failed with %d", w.Code)
	}
	var fetched entity.Record
	if err := json.Unmarshal(w.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if fetched["name"] != "Akbar Ali" {
		t.Fatalf("unexpected record: %v", fetched)
	}

	w = perform(t, r, http.MethodDelete, recordPath("drivers", id), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete failed with %d", w.Code)
	}

	w = perform(t, r, http.MethodGet, recordPath("drivers", id), token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestUnknownCollectionIs404(t *testing.T) {
	r := newTestRouter(t)
	token := adminToken(t, r)

	w := perform(t, r, http.MethodGet, "/api/records/payroll", token, nil)
	if w.Code != http.StatusForbidden && w.Code != http.StatusNotFound {
		t.Fatalf("expected denial for unknown collection, got %d", w.Code)
	}
}

func TestViewerCannotWrite(t *testing.T) {
	r := newTestRouter(t)
	admin := adminToken(t, r)
	viewer := createViewer(t, r, admin)

	// 读允许
	w := perform(t, r, http.MethodGet, "/api/records/stations", viewer, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("viewer read failed with %d", w.Code)
	}

	// 写拒绝
	w = perform(t, r, http.MethodPost, "/api/records/stations", viewer, entity.Record{"code": "GWD"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer create, got %d", w.Code)
	}

	// 用户管理对 viewer 完全关闭
	w = perform(t, r, http.MethodGet, "/api/records/users", viewer, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer listing users, got %d", w.Code)
	}
}

func TestUserListingHidesPasswordHash(t *testing.T) {
	r := newTestRouter(t)
	token := adminToken(t, r)

	w := perform(t, r, http.MethodGet, "/api/records/users", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("listing users failed with %d", w.Code)
	}
	var users []entity.Record
	if err := json.Unmarshal(w.Body.Bytes(), &users); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(users) == 0 {
		t.Fatal("expected seeded admin in listing")
	}
	for _, user := range users {
		if _, exists := user["password_hash"]; exists {
			t.Fatal("password hash must never reach the client")
		}
	}
}

func TestBatchTransaction(t *testing.T) {
	r := newTestRouter(t)
	token := adminToken(t, r)

	w := perform(t, r, http.MethodPost, "/api/transaction", token, BatchRequest{
		Operations: []store.TxOp{
			{Action: store.TxCreate, Collection: entity.CollectionStations, Data: entity.Record{"code": "QTA"}},
			{Action: store.TxCreate, Collection: entity.CollectionStations, Data: entity.Record{"code": "PEW"}},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("batch failed with %d: %s", w.Code, w.Body.String())
	}
	var resp BatchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
}

func TestAtomicBatchFailsClosedOnLocalBackend(t *testing.T) {
	r := newTestRouter(t)
	token := adminToken(t, r)

	w := perform(t, r, http.MethodPost, "/api/transaction", token, BatchRequest{
		Atomic: true,
		Operations: []store.TxOp{
			{Action: store.TxCreate, Collection: entity.CollectionStations, Data: entity.Record{"code": "QTA"}},
		},
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for atomic batch on local backend, got %d", w.Code)
	}
	var payload APIError
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if payload.Code != ErrCodeAtomicUnsupported {
		t.Fatalf("expected %s, got %s", ErrCodeAtomicUnsupported, payload.Code)
	}
}

func TestBatchHonoursPermissions(t *testing.T) {
	r := newTestRouter(t)
	admin := adminToken(t, r)
	viewer := createViewer(t, r, admin)

	w := perform(t, r, http.MethodPost, "/api/transaction", viewer, BatchRequest{
		Operations: []store.TxOp{
			{Action: store.TxCreate, Collection: entity.CollectionStations, Data: entity.Record{"code": "GWD"}},
		},
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer batch create, got %d", w.Code)
	}
}

// Batch 自身必须在无用户上下文时拒绝执行，不依赖外层中间件。
func TestBatchRejectsMissingUserContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	st, err := store.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	archive, err := exportstore.NewLocalArchive(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating archive: %v", err)
	}
	handler, err := NewHTTPHandler(config.Config{JWTSecret: "test-secret"}, st, archive)
	if err != nil {
		t.Fatalf("unexpected error creating handler: %v", err)
	}

	r := gin.New()
	r.POST("/api/transaction", handler.Batch)

	w := perform(t, r, http.MethodPost, "/api/transaction", "", BatchRequest{
		Operations: []store.TxOp{
			{Action: store.TxCreate, Collection: entity.CollectionStations, Data: entity.Record{"code": "QTA"}},
		},
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user context, got %d", w.Code)
	}

	records, err := st.GetAll(context.Background(), entity.CollectionStations)
	if err != nil {
		t.Fatalf("unexpected error loading stations: %v", err)
	}
	if len(records) != 0 {
		t.Fatal("no batch step may execute without an authenticated user")
	}
}

func TestReportExportPermissionAndResult(t *testing.T) {
	r := newTestRouter(t)
	admin := adminToken(t, r)
	viewer := createViewer(t, r, admin)

	// viewer 没有 reports.export
	w := perform(t, r, http.MethodPost, "/api/reports/stations/export", viewer, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer export, got %d", w.Code)
	}

	w = perform(t, r, http.MethodPost, "/api/reports/stations/export", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export failed with %d: %s", w.Code, w.Body.String())
	}
	var resp entity.ExportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if resp.Collection != entity.CollectionStations {
		t.Fatalf("unexpected collection %s", resp.Collection)
	}
	if resp.Rows == 0 {
		t.Fatal("expected seeded stations in the export")
	}
	if resp.Path == "" {
		t.Fatal("expected an archive path")
	}
}

// 导出通道不得绕过集合级读取权限：operator 有 reports.export
// 却没有 users.view，对用户集合的导出必须被拒绝。
func TestExportRequiresCollectionViewPermission(t *testing.T) {
	r := newTestRouter(t)
	admin := adminToken(t, r)
	operator := createOperator(t, r, admin)

	w := perform(t, r, http.MethodPost, "/api/reports/users/export", operator, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 exporting users without view permission, got %d", w.Code)
	}

	// 有 view 权限的集合照常导出
	w = perform(t, r, http.MethodPost, "/api/reports/stations/export", operator, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("operator stations export failed with %d: %s", w.Code, w.Body.String())
	}
}

func TestMyPermissionsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	admin := adminToken(t, r)
	viewer := createViewer(t, r, admin)

	w := perform(t, r, http.MethodGet, "/api/permissions", viewer, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Role        string                              `json:"role"`
		Permissions map[string]permission.CapabilitySet `json:"permissions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if resp.Role != permission.RoleViewer {
		t.Fatalf("expected viewer role, got %s", resp.Role)
	}
	if resp.Permissions["stations"][permission.ActionAdd] {
		t.Fatal("viewer must not be able to add stations")
	}
	if !resp.Permissions["stations"][permission.ActionView] {
		t.Fatal("viewer should view stations")
	}
}

func recordPath(collection string, id int64) string {
	return "/api/records/" + collection + "/" + strconv.FormatInt(id, 10)
}
