package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./scx.db" {
			t.Errorf("expected database path ./scx.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.SoundCloud.Site != "soundcloud.com" {
			t.Errorf("expected site soundcloud.com, got %s", config.SoundCloud.Site)
		}

		if config.SoundCloud.RedirectURI != "http://127.0.0.1:3000/callback" {
			t.Errorf("expected redirect uri http://127.0.0.1:3000/callback, got %s", config.SoundCloud.RedirectURI)
		}

		if config.Server.Addr() != "127.0.0.1:3000" {
			t.Errorf("expected addr 127.0.0.1:3000, got %s", config.Server.Addr())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[soundcloud]
client_id = "test_client_id"
client_secret = "test_secret"
use_ssl = true

[server]
port = 8080
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.SoundCloud.ClientID != "test_client_id" || !config.SoundCloud.UseSSL {
			t.Errorf("unexpected soundcloud section %+v", config.SoundCloud)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Database.Path != "./scx.db" {
			t.Errorf("expected missing values to keep defaults, got %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("LoadConfig invalid toml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[soundcloud\nclient_id ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("SaveConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.SoundCloud.ClientID = "saved"
		config.SoundCloud.RefreshToken = "ref"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.SoundCloud.ClientID != "saved" || loaded.SoundCloud.RefreshToken != "ref" {
			t.Errorf("unexpected soundcloud section %+v", loaded.SoundCloud)
		}
	})
}
