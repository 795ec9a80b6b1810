// Package config holds the daemon configuration: TOML file loading with
// defaulting and validation, plus a starter-template writer.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/adamdewolf/OpenCentauri-VNC/internal/rfb"
)

// DeviceTestPattern selects the synthetic in-memory frame source instead of
// a framebuffer device.
const DeviceTestPattern = "test"

// Config is the full daemon configuration. Command-line flags override file
// values; defaults match the reference deployment (a printer display on
// /dev/fb0 at 3 fps).
type Config struct {
	Device      string   `toml:"device"`
	Port        int      `toml:"port"`
	FPS         int      `toml:"fps"`
	Name        string   `toml:"name"`
	OpsAddr     string   `toml:"ops_addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

func Default() Config {
	return Config{
		Device: "/dev/fb0",
		Port:   5900,
		FPS:    3,
		Name:   "fb0 (RAW)",
	}
}

// Load reads path over the defaults, clamps the frame rate, and validates.
// An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	}
	cfg.FPS = rfb.ClampFPS(cfg.FPS)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Device) == "" {
		return fmt.Errorf("config missing device")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("config port out of range: %d", cfg.Port)
	}
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("config missing name")
	}
	return nil
}
