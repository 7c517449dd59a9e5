package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/oddsforge/wager-engine/errors"
)

func TestOKEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	OK(c, map[string]string{"handle": "req-0001"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp BaseResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if !resp.IsSuccess || resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok || data["handle"] != "req-0001" {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}
}

func TestHandleAppErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/test", nil)

	HandleAppError(c, errors.New(errors.ErrAlreadyPending, "a game is already pending"))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if resp.IsSuccess {
		t.Fatal("error envelope marked as success")
	}
	if resp.Error.ErrorCode != errors.ErrAlreadyPending {
		t.Fatalf("expected code %d, got %d", errors.ErrAlreadyPending, resp.Error.ErrorCode)
	}
	if resp.Error.Path != "/test" {
		t.Fatalf("unexpected path %q", resp.Error.Path)
	}
}
