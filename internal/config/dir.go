package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	EnvConfigDir         = "APIDEMO_CONFIG_DIR"
	envOTLPEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTLPInsecure      = "OTEL_EXPORTER_OTLP_INSECURE"
	envOTLPServiceName   = "OTEL_SERVICE_NAME"
	appDirName           = "api-demo"
	fallbackRelConfigDir = ".config"
)

// Dir returns the directory settings and local state live in.
func Dir() string {
	if dir := strings.TrimSpace(os.Getenv(EnvConfigDir)); dir != "" {
		return dir
	}
	if base, err := os.UserConfigDir(); err == nil && base != "" {
		return filepath.Join(base, appDirName)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, fallbackRelConfigDir, appDirName)
	}
	return appDirName
}

// ApplyEnv lets the standard OTLP variables win over the settings file.
func ApplyEnv(settings Settings, getenv func(string) string) Settings {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(envOTLPEndpoint)); v != "" {
		settings.Telemetry.Endpoint = v
	}
	if v := strings.TrimSpace(getenv(envOTLPInsecure)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.Telemetry.Insecure = b
		}
	}
	if v := strings.TrimSpace(getenv(envOTLPServiceName)); v != "" {
		settings.Telemetry.ServiceName = v
	}
	return settings
}
