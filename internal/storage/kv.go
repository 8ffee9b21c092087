package storage

import (
	"context"
	"strings"

	"github.com/jan-sykora/api-demo/internal/errdef"
)

// KV is the small persistence surface the client side needs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open picks the store for driver. An empty driver means file.
func Open(driver, path string) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverFile:
		return NewFileStore(path), nil
	case DriverSQLite:
		return OpenSQLite(path)
	default:
		return nil, errdef.New(errdef.CodeStorage, "unknown storage driver %q", driver)
	}
}
