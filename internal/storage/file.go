package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jan-sykora/api-demo/internal/errdef"
)

// FileStore keeps every key in one JSON object on disk. Values are
// written base64 encoded so arbitrary bytes survive a reload.
// An unreadable file is moved aside to <path>.corrupt and the store
// starts empty.
type FileStore struct {
	path    string
	mu      sync.RWMutex
	entries map[string][]byte
	loaded  bool
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, false, err
	}
	value, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}
	s.entries[key] = append([]byte(nil), value...)
	return s.persistLocked()
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}
	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	return s.persistLocked()
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "create store dir")
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return errdef.Wrap(errdef.CodeStorage, err, "encode store")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "write store tmp")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "replace store file")
	}
	return nil
}

func (s *FileStore) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.entries = map[string][]byte{}
			s.loaded = true
			return nil
		}
		return errdef.Wrap(errdef.CodeStorage, err, "read store")
	}

	entries := map[string][]byte{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			aside := s.path + ".corrupt"
			zerolog.Ctx(ctx).Warn().Err(err).Str("path", s.path).Str("moved_to", aside).
				Msg("discarding unreadable store")
			if err := os.Rename(s.path, aside); err != nil {
				return errdef.Wrap(errdef.CodeFilesystem, err, "move corrupt store aside")
			}
			entries = map[string][]byte{}
		}
	}
	s.entries = entries
	s.loaded = true
	return nil
}
