package source

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 100 * time.Millisecond

// FileWatcher reports debounced writes to a set of files. It watches the
// parent directories so editors that save by rename are still seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	dirs     map[string]int
	onChange func(string)
	onError  func(error)
	mu       sync.RWMutex
	done     chan struct{}
	once     sync.Once
}

// NewFileWatcher starts a watcher calling onChange with the absolute path of
// each changed file. onError may be nil.
func NewFileWatcher(onChange func(string), onError func(error)) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher:  watcher,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]int),
		onChange: onChange,
		onError:  onError,
		done:     make(chan struct{}),
	}

	go fw.watch()
	return fw, nil
}

func (fw *FileWatcher) AddFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, exists := fw.files[absPath]; exists {
		return nil
	}

	dir := filepath.Dir(absPath)
	if fw.dirs[dir] == 0 {
		if err := fw.watcher.Add(dir); err != nil {
			return err
		}
	}
	fw.dirs[dir]++
	fw.files[absPath] = struct{}{}
	return nil
}

func (fw *FileWatcher) RemoveFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, exists := fw.files[absPath]; !exists {
		return nil
	}
	delete(fw.files, absPath)

	dir := filepath.Dir(absPath)
	fw.dirs[dir]--
	if fw.dirs[dir] <= 0 {
		delete(fw.dirs, dir)
		return fw.watcher.Remove(dir)
	}
	return nil
}

func (fw *FileWatcher) watching(path string) bool {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	_, ok := fw.files[path]
	return ok
}

func (fw *FileWatcher) watch() {
	var dmu sync.Mutex
	debounce := make(map[string]*time.Timer)

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Clean(event.Name)
			if !fw.watching(name) {
				continue
			}

			dmu.Lock()
			if timer, exists := debounce[name]; exists {
				timer.Stop()
			}
			debounce[name] = time.AfterFunc(debounceDelay, func() {
				dmu.Lock()
				delete(debounce, name)
				dmu.Unlock()

				select {
				case <-fw.done:
					return
				default:
				}
				if fw.watching(name) && fw.onChange != nil {
					fw.onChange(name)
				}
			})
			dmu.Unlock()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			if fw.onError != nil {
				fw.onError(err)
			}

		case <-fw.done:
			return
		}
	}
}

func (fw *FileWatcher) Close() error {
	var err error
	fw.once.Do(func() {
		close(fw.done)
		err = fw.watcher.Close()
	})
	return err
}
