package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HCI_CONFIG_DIR", t.TempDir())
	t.Setenv("HCI_ASSET_API_URL", "")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.APIURL != defaultAPIURL || s.Category != defaultCategory || s.HighlightWindow != 0 {
		t.Errorf("unexpected defaults: %+v", s)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HCI_CONFIG_DIR", dir)
	t.Setenv("HCI_ASSET_API_URL", "")
	data := "api_url = \"https://itam.example.com/\"\ncategory = \"server\"\nhighlight_window = \"5s\"\n"
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.APIURL != "https://itam.example.com" {
		t.Errorf("APIURL = %q", s.APIURL)
	}
	if s.Category != "server" || s.HighlightWindow != 5*time.Second {
		t.Errorf("unexpected settings: %+v", s)
	}

	t.Setenv("HCI_ASSET_API_URL", "http://127.0.0.1:9999")
	if got := APIURL(); got != "http://127.0.0.1:9999" {
		t.Errorf("env override: got %q", got)
	}
}

func TestLoad_BadWindow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HCI_CONFIG_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte("highlight_window = \"soon\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("want error for invalid highlight_window")
	}
}

func TestToken_SaveReadClear(t *testing.T) {
	t.Setenv("HCI_CONFIG_DIR", filepath.Join(t.TempDir(), "nested"))

	if _, err := ReadToken(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("ReadToken before login: got %v, want ErrNotLoggedIn", err)
	}
	if err := SaveToken("abc.def.ghi"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	token, err := ReadToken()
	if err != nil || token != "abc.def.ghi" {
		t.Fatalf("ReadToken: %q, %v", token, err)
	}

	removed, err := ClearToken()
	if err != nil || !removed {
		t.Fatalf("ClearToken: %v, %v", removed, err)
	}
	removed, err = ClearToken()
	if err != nil || removed {
		t.Errorf("second ClearToken: %v, %v", removed, err)
	}
}
