package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/oddsforge/wager-engine/config"
	"github.com/oddsforge/wager-engine/docs"
)

func TestRegisterSwaggerServesSpec(t *testing.T) {
	cfg := &config.Config{Environment: "production"}
	app := New(Options{Config: cfg, Logger: zerolog.Nop()})
	app.RegisterSwagger(func(host string) { docs.SwaggerInfo.Host = host })

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	req.Host = "wager.example.com"
	w := httptest.NewRecorder()
	app.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Wager Engine API") {
		t.Fatalf("spec missing title: %s", body)
	}
	if !strings.Contains(body, "wager.example.com") {
		t.Fatal("spec host not taken from the request")
	}
}
