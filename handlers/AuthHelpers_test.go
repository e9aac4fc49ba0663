package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestBearerTokenStripsPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	c.Request.Header.Set("Authorization", "Bearer abc123")
	if got := bearerToken(c); got != "abc123" {
		t.Fatalf("expected abc123, got %q", got)
	}

	c.Request.Header.Set("Authorization", "abc123")
	if got := bearerToken(c); got != "abc123" {
		t.Fatalf("expected bare token passthrough, got %q", got)
	}
}

func TestMissingAuthorizationHeaderNamesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/purchase/po/create", CreatePO(nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/purchase/po/create", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body["error"] != "Authorization header is required" {
		t.Fatalf("expected the error to name the Authorization header, got %q", body["error"])
	}
}
