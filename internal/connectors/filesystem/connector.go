// Package filesystem turns files and directories on local disk into ingest
// requests, and watches directories for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/logger"
)

// ErrClosed is returned by operations on a closed connector.
var ErrClosed = errors.New("filesystem: connector closed")

// ChangeType represents the kind of file change observed by Watch.
type ChangeType int

// Change types.
const (
	ChangeCreated ChangeType = iota
	ChangeUpdated
	ChangeDeleted
)

// String returns the change type name.
func (t ChangeType) String() string {
	switch t {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is one observed file change. Request is nil for deletions.
type Change struct {
	Type    ChangeType
	Path    string
	Request *domain.IngestRequest
}

// Connector reads supported documents below a root directory.
type Connector struct {
	rootPath string

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// New creates a connector rooted at rootPath.
func New(rootPath string) *Connector {
	return &Connector{rootPath: rootPath}
}

// Root returns the root path.
func (c *Connector) Root() string {
	return c.rootPath
}

// Validate checks that the root exists and is a directory.
func (c *Connector) Validate() error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", c.rootPath)
	}
	return nil
}

// Walk reads every supported, non-hidden file below the root, in path order.
// Files are named by their slash-separated path relative to the root.
func (c *Connector) Walk(ctx context.Context) ([]domain.IngestRequest, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var paths []string
	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, _ := filepath.Rel(c.rootPath, path)
		if rel != "." && isHidden(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && IsSupported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)

	reqs := make([]domain.IngestRequest, 0, len(paths))
	for _, path := range paths {
		req, err := c.load(path)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			continue
		}
		reqs = append(reqs, req)
	}

	logger.Debug("Walked %s: %d supported files", c.rootPath, len(reqs))
	return reqs, nil
}

// load reads path as a request named relative to the root.
func (c *Connector) load(path string) (domain.IngestRequest, error) {
	req, err := LoadFile(path)
	if err != nil {
		return req, err
	}
	if rel, err := filepath.Rel(c.rootPath, path); err == nil {
		req.FileName = filepath.ToSlash(rel)
	}
	return req, nil
}

// Watch reports changes to supported files below the root until ctx is
// cancelled or the connector is closed. New subdirectories are watched as
// they appear. The returned channel is closed when watching stops.
func (c *Connector) Watch(ctx context.Context) (<-chan Change, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.watcher != nil {
		return nil, errors.New("filesystem: already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := addTree(watcher, c.rootPath); err != nil {
		watcher.Close()
		return nil, err
	}
	c.watcher = watcher

	changes := make(chan Change)
	go c.watchLoop(ctx, watcher, changes)

	return changes, nil
}

func (c *Connector) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- Change) {
	defer close(changes)
	defer c.stopWatching(watcher)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !c.hiddenBelowRoot(event.Name) {
					if err := addTree(watcher, event.Name); err != nil {
						logger.Warn("Cannot watch %s: %v", event.Name, err)
					}
					continue
				}
			}

			change := c.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func (c *Connector) stopWatching(watcher *fsnotify.Watcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher == watcher {
		c.watcher = nil
	}
	watcher.Close()
}

// hiddenBelowRoot reports whether path is hidden relative to the root.
func (c *Connector) hiddenBelowRoot(path string) bool {
	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil {
		rel = path
	}
	return isHidden(rel)
}

// handleFsEvent maps a raw event to a change, or nil if it is not relevant.
func (c *Connector) handleFsEvent(event fsnotify.Event) *Change {
	if c.hiddenBelowRoot(event.Name) || !IsSupported(event.Name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &Change{Type: ChangeDeleted, Path: event.Name}

	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		req, err := c.load(event.Name)
		if err != nil {
			logger.Warn("Cannot read %s: %v", event.Name, err)
			return nil
		}
		changeType := ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = ChangeCreated
		}
		return &Change{Type: changeType, Path: event.Name, Request: &req}

	default:
		return nil
	}
}

// Close stops any active watch. Close is idempotent.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

// addTree watches root and every non-hidden directory below it.
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable subtrees are skipped
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return fs.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// LoadFile reads a single file into an ingest request named by SourceName.
func LoadFile(path string) (domain.IngestRequest, error) {
	fileType, err := domain.FileTypeFromName(path)
	if err != nil {
		return domain.IngestRequest{}, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return domain.IngestRequest{}, fmt.Errorf("read %s: %w", path, err)
	}

	return domain.IngestRequest{
		Content:  content,
		FileName: SourceName(path),
		FileType: fileType,
	}, nil
}

// IsSupported reports whether path has an extension an extractor handles.
func IsSupported(path string) bool {
	_, err := domain.FileTypeFromName(path)
	return err == nil
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
