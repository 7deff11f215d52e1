package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		status         int
		code           string
		message        string
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "BadRequest",
			status:         http.StatusBadRequest,
			code:           ErrCodeInvalidRequest,
			message:        "无效的请求",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrCodeInvalidRequest,
			expectedMsg:    "无效的请求",
		},
		{
			name:           "NotFound",
			status:         http.StatusNotFound,
			code:           ErrCodeCollectionNotFound,
			message:        "集合不存在",
			expectedStatus: http.StatusNotFound,
			expectedCode:   ErrCodeCollectionNotFound,
			expectedMsg:    "集合不存在",
		},
		{
			name:           "Conflict",
			status:         http.StatusConflict,
			code:           ErrCodeAtomicUnsupported,
			message:        "后端不支持原子批次",
			expectedStatus: http.StatusConflict,
			expectedCode:   ErrCodeAtomicUnsupported,
			expectedMsg:    "后端不支持原子批次",
		},
		{
			name:           "InternalError",
			status:         http.StatusInternalServerError,
			code:           ErrCodeInternalError,
			message:        "服务器内部错误",
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   ErrCodeInternalError,
			expectedMsg:    "服务器内部错误",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			ErrorResponse(c, tt.status, tt.code, tt.message)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var payload APIError
			if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if payload.Code != tt.expectedCode {
				t.Fatalf("expected code %s, got %s", tt.expectedCode, payload.Code)
			}
			if payload.Message != tt.expectedMsg {
				t.Fatalf("expected message %s, got %s", tt.expectedMsg, payload.Message)
			}
		})
	}
}

func TestMissingFieldCarriesDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	MissingField(c, "operations")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var payload struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if payload.Code != ErrCodeMissingField {
		t.Fatalf("expected code %s, got %s", ErrCodeMissingField, payload.Code)
	}
	if payload.Details["field"] != "operations" {
		t.Fatalf("expected field detail, got %v", payload.Details)
	}
}
