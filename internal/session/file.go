package session

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/joseph-ayodele/jobboard/internal/common"
)

// FileStore keeps one token pair in a JSON file, used by jobctl.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) read() (Tokens, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Tokens{}, nil
	}
	if err != nil {
		return Tokens{}, common.StorageError("read token file", err)
	}
	var t Tokens
	if err := json.Unmarshal(raw, &t); err != nil {
		// a corrupt file is treated as signed out
		return Tokens{}, nil
	}
	return t, nil
}

func (f *FileStore) write(t Tokens) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return common.StorageError("create token dir", err)
	}
	raw, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return common.StorageError("encode tokens", err)
	}
	if err := os.WriteFile(f.path, raw, 0o600); err != nil {
		return common.StorageError("write token file", err)
	}
	return nil
}

func (f *FileStore) Set(_ context.Context, access, refresh string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(Tokens{Access: access, Refresh: refresh})
}

func (f *FileStore) SetAccess(_ context.Context, access string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.read()
	if err != nil {
		return err
	}
	t.Access = access
	return f.write(t)
}

func (f *FileStore) Access(_ context.Context) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, _ := f.read()
	return t.Access, t.Access != ""
}

func (f *FileStore) Refresh(_ context.Context) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, _ := f.read()
	return t.Refresh, t.Refresh != ""
}

func (f *FileStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return common.StorageError("remove token file", err)
	}
	return nil
}
