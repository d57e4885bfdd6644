package state

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// statePermissions is the file permission mode for state files.
const statePermissions = 0o600

// ReadFile reads the state at path. A missing file yields an empty state.
func ReadFile(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	return Parse(data)
}

// Parse parses TOML state data.
func Parse(data []byte) (*State, error) {
	s := New()
	s.Version = 0
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if s.Version == 0 {
		s.Version = CurrentVersion
	}
	if s.Version > CurrentVersion {
		return nil, fmt.Errorf("unsupported state file version %d (max %d)", s.Version, CurrentVersion)
	}

	if s.LastReleaseVersions == nil {
		s.LastReleaseVersions = make(map[string]string)
	}
	if s.PreHotfixVersions == nil {
		s.PreHotfixVersions = make(map[string]string)
	}
	return s, nil
}

// Marshal serializes the state. Map keys are written in sorted order.
func (s *State) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTo writes the state to w.
func (s *State) WriteTo(w io.Writer) (int64, error) {
	data, err := s.Marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// WriteFile writes the state to path.
func (s *State) WriteFile(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, statePermissions)
}

// DefaultPath returns the state file path for a project directory.
func DefaultPath(projectDir string) string {
	if projectDir == "" {
		return DefaultFileName
	}
	return filepath.Join(projectDir, DefaultFileName)
}
