package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"parley/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWorkspace := filepath.Join(tempHome, ".local", "share", "parley")
	if cfg.Paths.WorkspaceDir != wantWorkspace {
		t.Fatalf("unexpected workspace dir: got %q want %q", cfg.Paths.WorkspaceDir, wantWorkspace)
	}
	if cfg.Catalog.Path != filepath.Join(wantWorkspace, "catalog.db") {
		t.Fatalf("unexpected catalog path: %q", cfg.Catalog.Path)
	}
	if !cfg.Save.Backup || !cfg.Save.UpdateWordCount {
		t.Fatalf("unexpected save defaults: %+v", cfg.Save)
	}
	if cfg.Dialogue.DefaultLanguage != "en" {
		t.Fatalf("unexpected default language: %q", cfg.Dialogue.DefaultLanguage)
	}
}

func TestLoadParsesExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "parley.toml")
	contents := strings.Join([]string{
		"[paths]",
		`workspace_dir = "` + filepath.Join(dir, "work") + `"`,
		"[dialogue]",
		`default_language = "DE"`,
		"[logging]",
		`format = "json"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Paths.WorkspaceDir != filepath.Join(dir, "work") {
		t.Fatalf("workspace dir = %q", cfg.Paths.WorkspaceDir)
	}
	if cfg.Dialogue.DefaultLanguage != "de" {
		t.Fatalf("language not normalized: %q", cfg.Dialogue.DefaultLanguage)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("log format = %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "parley.toml")
	if err := os.WriteFile(path, []byte("[dialogue]\ndefault_language = \"tlh\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown language code to fail validation")
	}

	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unsupported log format to fail validation")
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
