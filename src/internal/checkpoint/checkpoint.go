// FILE: logfeeder/src/internal/checkpoint/checkpoint.go
package checkpoint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Checkpoint is the persisted read progress of one input
type Checkpoint struct {
	Path       string    `json:"path"`
	Offset     int64     `json:"offset"`
	LineNumber int64     `json:"line_number"`
	Size       int64     `json:"size"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Identity of the file the offset belongs to. Empty fields are not checked.
	FileKey      string `json:"file_key,omitempty"`
	Checksum     string `json:"checksum,omitempty"`
	ChecksumSize int64  `json:"checksum_size,omitempty"`
}

// Store persists checkpoints by key
type Store interface {
	// Load returns the checkpoint for key; found is false when none was saved
	Load(key string) (cp Checkpoint, found bool, err error)
	Save(key string, cp Checkpoint) error
}

// FileStore keeps one JSON document per key in a directory. Saves are atomic.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("checkpoint directory is empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) Load(key string) (Checkpoint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cp Checkpoint
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return cp, false, nil
	}
	if err != nil {
		return cp, false, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	if err := json.Unmarshal(data, &cp); err != nil {
		return cp, false, fmt.Errorf("corrupt checkpoint %s: %w", s.path(key), err)
	}
	return cp, true, nil
}

// Save writes a temp file and renames it over the previous checkpoint
func (s *FileStore) Save(key string, cp Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(target)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close checkpoint: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit checkpoint: %w", err)
	}
	return nil
}

// path maps a key to a readable, collision-free file name
func (s *FileStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, filepath.Base(key))
	if len(safe) > 64 {
		safe = safe[:64]
	}
	return filepath.Join(s.dir, safe+"-"+hex.EncodeToString(sum[:6])+".cp.json")
}
