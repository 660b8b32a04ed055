package grc

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Environment variables read by LoadConfig.
const (
	EnvHome     = "GRC_HOME"
	EnvFrontEnd = "GRC_FRONTEND"
	EnvCompiler = "GRC_LLC"
	EnvCC       = "GRC_CC"
	EnvRuntime  = "GRC_RUNTIME"
	EnvDebug    = "GRC_DEBUG"
)

type Config struct {
	InstallDir string
	Tools      Toolchain
	LogLevel   slog.Level
}

// LoadConfig builds the configuration from the environment. The install
// directory defaults to the directory holding the running executable, so the
// front-end is found no matter where the driver is called from.
func LoadConfig(getenv func(string) string, executable func() (string, error)) (*Config, error) {
	cfg := &Config{
		Tools:    DefaultToolchain(),
		LogLevel: slog.LevelWarn,
	}

	if dir := getenv(EnvHome); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", EnvHome, err)
		}

		cfg.InstallDir = abs
	} else {
		exe, err := executable()
		if err != nil {
			return nil, fmt.Errorf("locating driver executable: %w", err)
		}

		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}

		cfg.InstallDir = filepath.Dir(exe)
	}

	overrides := []struct {
		env string
		dst *string
	}{
		{EnvFrontEnd, &cfg.Tools.FrontEnd},
		{EnvCompiler, &cfg.Tools.Compiler},
		{EnvCC, &cfg.Tools.CC},
		{EnvRuntime, &cfg.Tools.Runtime},
	}

	for _, o := range overrides {
		if v := getenv(o.env); v != "" {
			*o.dst = v
		}
	}

	if getenv(EnvDebug) != "" {
		cfg.LogLevel = slog.LevelDebug
	}

	return cfg, nil
}
