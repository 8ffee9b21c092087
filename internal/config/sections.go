package config

import (
	"strings"
	"time"
)

type StorageDriver string

const (
	StorageDriverFile   StorageDriver = "file"
	StorageDriverSQLite StorageDriver = "sqlite"
)

// Duration reads and writes durations as text ("30s") in every settings format.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type ServerSettings struct {
	HTTPAddr        string   `json:"http_addr"        toml:"http_addr"        yaml:"http_addr"`
	ShutdownTimeout Duration `json:"shutdown_timeout" toml:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type ClientSettings struct {
	BasePath    string   `json:"base_path"    toml:"base_path"    yaml:"base_path"`
	BearerToken string   `json:"bearer_token" toml:"bearer_token" yaml:"bearer_token"`
	Timeout     Duration `json:"timeout"      toml:"timeout"      yaml:"timeout"`
	PageSize    int32    `json:"page_size"    toml:"page_size"    yaml:"page_size"`
}

type StorageSettings struct {
	Driver StorageDriver `json:"driver" toml:"driver" yaml:"driver"`
	Path   string        `json:"path"   toml:"path"   yaml:"path"`
}

type TelemetrySettings struct {
	Endpoint    string `json:"endpoint"     toml:"endpoint"     yaml:"endpoint"`
	Insecure    bool   `json:"insecure"     toml:"insecure"     yaml:"insecure"`
	ServiceName string `json:"service_name" toml:"service_name" yaml:"service_name"`
}

const (
	ServerHTTPAddrDefault        = ":8080"
	ServerShutdownTimeoutDefault = Duration(5 * time.Second)
	ClientBasePathDefault        = "http://localhost:8080"
	ClientTimeoutDefault         = Duration(30 * time.Second)
	ClientPageSizeDefault        = 20
	ClientPageSizeMax            = 100
)

func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			HTTPAddr:        ServerHTTPAddrDefault,
			ShutdownTimeout: ServerShutdownTimeoutDefault,
		},
		Client: ClientSettings{
			BasePath: ClientBasePathDefault,
			Timeout:  ClientTimeoutDefault,
			PageSize: ClientPageSizeDefault,
		},
		Storage: StorageSettings{Driver: StorageDriverFile},
	}
}

// NormaliseSettings fills unset values with defaults and clamps the rest.
func NormaliseSettings(in Settings) Settings {
	out := in
	def := DefaultSettings()

	out.Server.HTTPAddr = strings.TrimSpace(in.Server.HTTPAddr)
	if out.Server.HTTPAddr == "" {
		out.Server.HTTPAddr = def.Server.HTTPAddr
	}
	if in.Server.ShutdownTimeout <= 0 {
		out.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}

	out.Client.BasePath = strings.TrimSpace(in.Client.BasePath)
	if out.Client.BasePath == "" {
		out.Client.BasePath = def.Client.BasePath
	}
	if in.Client.Timeout <= 0 {
		out.Client.Timeout = def.Client.Timeout
	}
	out.Client.PageSize = clampInt(in.Client.PageSize, 1, ClientPageSizeMax, ClientPageSizeDefault)

	out.Storage.Driver = normaliseDriver(in.Storage.Driver, def.Storage.Driver)
	out.Storage.Path = strings.TrimSpace(in.Storage.Path)
	return out
}

func normaliseDriver(in StorageDriver, def StorageDriver) StorageDriver {
	switch strings.ToLower(strings.TrimSpace(string(in))) {
	case string(StorageDriverSQLite):
		return StorageDriverSQLite
	case string(StorageDriverFile):
		return StorageDriverFile
	default:
		return def
	}
}

func clampInt[T ~int32](value, min, max, fallback T) T {
	if value == 0 {
		return fallback
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
