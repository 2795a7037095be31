package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DB.Host != "localhost" || cfg.DB.Name != "boersendaten" || cfg.DB.User != "postgres" {
		t.Fatalf("unexpected db defaults: %+v", cfg.DB)
	}
	if cfg.DefaultSource != "vw" || cfg.DB.DefaultSource != "vw" {
		t.Fatalf("expected default source vw, got %q", cfg.DefaultSource)
	}
	if strings.Join(cfg.Sources, ",") != "vw,blackrock,goldman,cac40" {
		t.Fatalf("unexpected sources %v", cfg.Sources)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("SOURCES", " vw , goldman ,,")
	t.Setenv("VIEWPORT_WIDTH", "1024")
	t.Setenv("VIEWPORT_HEIGHT", "not-a-number")
	t.Setenv("SHELL_MODE", "tui")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DB.Host != "" {
		t.Fatalf("expected PostgreSQL disabled, got host %q", cfg.DB.Host)
	}
	if strings.Join(cfg.Sources, ",") != "vw,goldman" {
		t.Fatalf("unexpected sources %v", cfg.Sources)
	}
	if cfg.ViewportWidth != 1024 || cfg.ViewportHeight != 600 {
		t.Fatalf("unexpected viewport %dx%d", cfg.ViewportWidth, cfg.ViewportHeight)
	}
	if cfg.ShellMode != "tui" {
		t.Fatalf("expected tui shell, got %q", cfg.ShellMode)
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := &Config{ShellMode: "gui", DataDir: "data"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"DEFAULT_SOURCE", "at least one source", "VIEWPORT", "SHELL_MODE"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestDBConfig(t *testing.T) {
	d := DBConfig{Host: "localhost", Port: 5432, Name: "boersendaten", User: "postgres", Password: "dp", DefaultSource: "vw"}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := "postgres://postgres:dp@localhost:5432/boersendaten?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}

	d.Password = ""
	d.Port = 0
	err := d.Validate()
	if err == nil || !strings.Contains(err.Error(), "password") || !strings.Contains(err.Error(), "port") {
		t.Fatalf("expected missing port and password, got %v", err)
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	data := "sources:\n  - name: vw\n    label: Volkswagen\n  - name: blackrock\n  - name: \"  \"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	names, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if strings.Join(names, ",") != "vw,blackrock" {
		t.Fatalf("unexpected names %v", names)
	}

	t.Setenv("SOURCES_FILE", path)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Sources) != 2 {
		t.Fatalf("expected catalog to replace sources, got %v", cfg.Sources)
	}

	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing catalog")
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestValidate_Silent(t *testing.T) {
	t.Setenv("DB_HOST", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	out := captureStdout(t, func() {
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})
	if out != "" {
		t.Fatalf("Validate wrote to stdout: %q", out)
	}

	out = captureStdout(t, cfg.Print)
	if !strings.Contains(out, "PostgreSQL backend disabled") {
		t.Fatalf("Print should report the disabled backend, got %q", out)
	}
}
