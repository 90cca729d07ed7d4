package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/nao1215/userclean/internal/model"
)

// ErrInputNotFound is returned when the input file does not exist.
var ErrInputNotFound = errors.New("input file not found")

// Store reads and writes dataset files on a billy filesystem.
type Store struct {
	fs billy.Filesystem
}

// NewStore creates a store on fs.
func NewStore(fs billy.Filesystem) *Store {
	return &Store{fs: fs}
}

// NewOSStore creates a store on the native filesystem. Relative paths are
// resolved against the working directory.
func NewOSStore() *Store {
	return &Store{fs: osfs.New("")}
}

// Load reads path and decodes it with Decode.
func (s *Store) Load(ctx context.Context, path string) ([]model.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := util.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return Decode(data)
}

// Exists reports whether path exists.
func (s *Store) Exists(path string) (bool, error) {
	_, err := s.fs.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
}

// WriteFile writes data to path, creating parent directories as needed.
// An existing file is replaced.
func (s *Store) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := s.fs.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := util.WriteFile(s.fs, path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// FileSink writes the canonical JSON output to the run's output path.
type FileSink struct {
	store *Store
}

// NewFileSink creates a sink writing through store.
func NewFileSink(store *Store) *FileSink {
	return &FileSink{store: store}
}

// Write stores encoded at run.OutputPath.
func (f *FileSink) Write(ctx context.Context, run *model.Run, encoded []byte) error {
	return f.store.WriteFile(ctx, run.OutputPath, encoded)
}
