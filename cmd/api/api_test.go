package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/hci-itam/internal/config"
)

func login(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username})
	resp, err := http.Post(srv.URL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: got %d, want 200", resp.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Token == "" {
		t.Fatalf("login response: %v", err)
	}
	return out.Token
}

func authed(t *testing.T, srv *httptest.Server, method, path, token string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(method, srv.URL+path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// TestAPI_LoginThenListAssets is an integration test: it builds the full router with a
// sqlmock-backed DB, logs in to get a JWT, then calls GET /assets with the token.
func TestAPI_LoginThenListAssets(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash, role`).
		WithArgs("integration").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role"}).AddRow(1, "integration", nil, "viewer"))

	now := time.Now()
	mock.ExpectQuery(`SELECT asset_id, category, .* FROM assets WHERE category = \$1 ORDER BY asset_id`).
		WithArgs("server").
		WillReturnRows(sqlmock.NewRows([]string{
			"asset_id", "category", "type", "brand", "model", "serial_number", "asset_tag", "department",
			"location", "condition", "status", "notes", "os_name", "os_version", "firmware_version",
			"ip_address", "created_at", "updated_at",
		}).AddRow("SRV-001", "server", "", "Dell", "R740", nil, "", "", "", "", "in_use",
			"Server: db-1 | Description:  | Asset Checked: Yes | Remark: ", "Ubuntu", "24.04", "", "", now, now))

	cfg := config.Config{JWTSecret: "test-secret-for-integration", JWTExpireHours: 1}
	srv := httptest.NewServer(newRouter(db, cfg))
	defer srv.Close()

	token := login(t, srv, "integration")

	resp := authed(t, srv, "GET", "/assets?category=server", token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /assets status: got %d, want 200", resp.StatusCode)
	}
	var assets []struct {
		AssetID string `json:"asset_id"`
		Notes   string `json:"notes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&assets); err != nil {
		t.Fatalf("decode assets: %v", err)
	}
	if len(assets) != 1 || assets[0].AssetID != "SRV-001" {
		t.Errorf("unexpected assets: %+v", assets)
	}

	// Viewers cannot mutate; the store is never reached.
	del := authed(t, srv, "DELETE", "/assets/SRV-001", token)
	del.Body.Close()
	if del.StatusCode != http.StatusForbidden {
		t.Errorf("viewer DELETE status: got %d, want 403", del.StatusCode)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAPI_AssetsRequireToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, config.Config{JWTSecret: "x"}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/assets?category=server")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status %d, want 401", resp.StatusCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// TestAPI_Health is a quick smoke test for the health endpoint.
func TestAPI_Health(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, config.Config{JWTSecret: "x"}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status: got %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if resp.Header.Get("X-Request-Id") != "" {
		t.Log("request id echoed")
	}
}

// TestAPI_Ready checks that /ready pings the DB and returns 200 when DB is reachable.
func TestAPI_Ready(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, config.Config{JWTSecret: "x"}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatalf("ready request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /ready status: got %d, want 200", resp.StatusCode)
	}
}

func TestAPI_Metrics(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, config.Config{JWTSecret: "x"}))
	defer srv.Close()

	if resp, err := http.Get(srv.URL + "/health"); err == nil {
		resp.Body.Close()
	}
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), `http_requests_total{method="GET",path="/health",status="200"}`) {
		t.Errorf("metrics output missing /health counter")
	}
}
