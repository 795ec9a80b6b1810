package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Device != "/dev/fb0" {
		t.Fatalf("unexpected device: %q", cfg.Device)
	}
	if cfg.Port != 5900 {
		t.Fatalf("unexpected port: %d", cfg.Port)
	}
	if cfg.FPS != 3 {
		t.Fatalf("unexpected fps: %d", cfg.FPS)
	}
	if cfg.Name != "fb0 (RAW)" {
		t.Fatalf("unexpected name: %q", cfg.Name)
	}
	if cfg.OpsAddr != "" {
		t.Fatalf("ops endpoint should default to disabled, got %q", cfg.OpsAddr)
	}
}

func TestLoadOverridesAndClampsFPS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `device = "test"
port = 5901
fps = 40
name = "bench rig"
ops_addr = "127.0.0.1:9815"
cors_origins = ["http://localhost:3000"]
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Device != "test" {
		t.Fatalf("unexpected device: %q", cfg.Device)
	}
	if cfg.Port != 5901 {
		t.Fatalf("unexpected port: %d", cfg.Port)
	}
	if cfg.FPS != 15 {
		t.Fatalf("fps should clamp to 15, got %d", cfg.FPS)
	}
	if cfg.OpsAddr != "127.0.0.1:9815" {
		t.Fatalf("unexpected ops addr: %q", cfg.OpsAddr)
	}
	if len(cfg.CorsOrigins) != 1 {
		t.Fatalf("unexpected cors origins: %+v", cfg.CorsOrigins)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"empty device": `device = " "`,
		"port low":     `port = 0`,
		"port high":    `port = 70000`,
		"empty name":   `name = ""`,
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(body+"\n"), 0o600); err != nil {
			t.Fatalf("%s: write config: %v", name, err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestWriteTemplateRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	want := Default()
	if cfg.Device != want.Device || cfg.Port != want.Port || cfg.FPS != want.FPS || cfg.Name != want.Name {
		t.Fatalf("template drifted from defaults: %+v", cfg)
	}

	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected overwrite refusal")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("forced overwrite: %v", err)
	}
}
