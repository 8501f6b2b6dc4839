package flagstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
)

// FileStore is a MemoryStore mirrored to a JSON file after every write.
type FileStore struct {
	*MemoryStore
	path string
}

// DefaultPath returns the flag file location under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(dir, "leaguectl", "flags.json"), nil
}

// OpenFileStore loads path if it exists; a missing file starts empty.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{MemoryStore: NewMemoryStore(), path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read flag file: %w", err)
	default:
		var onDisk map[string]*record
		if err := json.Unmarshal(data, &onDisk); err != nil {
			return nil, fmt.Errorf("failed to parse flag file %s: %w", path, err)
		}
		for key, r := range onDisk {
			matchID, err := strconv.Atoi(key)
			if err != nil || r == nil {
				log.Warn().Str("key", key).Str("path", path).Msg("skipping malformed flag entry")
				continue
			}
			s.matches[matchID] = r
		}
	}

	s.persist = s.write
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) write(matches map[int]*record) error {
	onDisk := make(map[string]*record, len(matches))
	for id, r := range matches {
		onDisk[strconv.Itoa(id)] = r.clone()
	}
	data, err := json.MarshalIndent(onDisk, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode flags: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create flag dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write flag file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace flag file: %w", err)
	}
	return nil
}
