// Package config resolves CLI settings from ~/.hci/config.toml and the
// environment, and stores the login token next to it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultAPIURL   = "http://localhost:8080"
	defaultCategory = "asset"

	configFileName = "config.toml"
	tokenFileName  = "token"
)

// Settings are the effective CLI settings.
type Settings struct {
	APIURL          string
	Category        string
	HighlightWindow time.Duration
}

type fileConfig struct {
	APIURL          string `toml:"api_url"`
	Category        string `toml:"category"`
	HighlightWindow string `toml:"highlight_window"`
}

// Dir returns the directory holding the config file and token. It can be
// overridden with the HCI_CONFIG_DIR environment variable.
func Dir() (string, error) {
	if v := os.Getenv("HCI_CONFIG_DIR"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".hci"), nil
}

// Load reads the config file, if any, and applies environment overrides.
// A missing file is not an error.
func Load() (Settings, error) {
	s := Settings{APIURL: defaultAPIURL, Category: defaultCategory}

	dir, err := Dir()
	if err != nil {
		return s, err
	}
	var fc fileConfig
	path := filepath.Join(dir, configFileName)
	if _, err := toml.DecodeFile(path, &fc); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return s, fmt.Errorf("read %s: %w", path, err)
	}
	if fc.APIURL != "" {
		s.APIURL = fc.APIURL
	}
	if fc.Category != "" {
		s.Category = fc.Category
	}
	if fc.HighlightWindow != "" {
		d, err := time.ParseDuration(fc.HighlightWindow)
		if err != nil || d <= 0 {
			return s, fmt.Errorf("%s: invalid highlight_window %q", path, fc.HighlightWindow)
		}
		s.HighlightWindow = d
	}

	if v := os.Getenv("HCI_ASSET_API_URL"); v != "" {
		s.APIURL = v
	}
	s.APIURL = strings.TrimRight(s.APIURL, "/")
	return s, nil
}

// APIURL returns the base URL for the HCI Asset API.
// It can be overridden with the HCI_ASSET_API_URL environment variable.
func APIURL() string {
	s, err := Load()
	if err != nil {
		return defaultAPIURL
	}
	return s.APIURL
}

func tokenPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, tokenFileName), nil
}

// SaveToken stores the JWT returned by login, readable by the owner only.
func SaveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

// ErrNotLoggedIn is returned by ReadToken when no token is stored.
var ErrNotLoggedIn = errors.New("not logged in: run `hci login` first")

// ReadToken returns the stored JWT.
func ReadToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// ClearToken removes the stored JWT. It reports whether one existed.
func ClearToken() (bool, error) {
	path, err := tokenPath()
	if err != nil {
		return false, err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
