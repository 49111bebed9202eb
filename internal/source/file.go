package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// FileSource reads the sheet from a local CSV export.
type FileSource struct {
	Path string
	fs   afero.Fs

	mu      sync.Mutex
	watcher *FileWatcher
	changes chan ChangeEvent
}

// NewFileSource creates a source for path on the local disk.
func NewFileSource(path string) *FileSource {
	return NewFileSourceFs(afero.NewOsFs(), path)
}

// NewFileSourceFs reads path from fs. Watch only works on the OS filesystem.
func NewFileSourceFs(fs afero.Fs, path string) *FileSource {
	return &FileSource{Path: path, fs: fs}
}

// Fetch reads the whole file.
func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return data, nil
}

// Watch starts watching the file. Calling it again returns the same channel.
func (s *FileSource) Watch() (<-chan ChangeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return s.changes, nil
	}

	changes := make(chan ChangeEvent, 1)
	watcher, err := NewFileWatcher(func(path string) {
		select {
		case changes <- ChangeEvent{Path: path, Timestamp: time.Now()}:
		default:
			// A change is already pending.
		}
	}, nil)
	if err != nil {
		return nil, err
	}

	if err := watcher.AddFile(s.Path); err != nil {
		watcher.Close()
		return nil, err
	}

	s.watcher = watcher
	s.changes = changes
	return changes, nil
}

// StopWatching stops the watcher. The change channel is left open.
func (s *FileSource) StopWatching() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher == nil {
		return nil
	}
	err := s.watcher.RemoveFile(s.Path)
	if cerr := s.watcher.Close(); err == nil {
		err = cerr
	}
	s.watcher = nil
	s.changes = nil
	return err
}

func (s *FileSource) String() string {
	return s.Path
}
