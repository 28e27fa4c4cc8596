// Package store persists a storage tree as a single JSON or YAML document.
//
// Every load and save holds an exclusive cross-process lock on "<path>.lock"
// (github.com/gofrs/flock) and writes go through a temporary file that is
// renamed over the target, so readers never observe a partially written file.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/G-Node/nix-sub001/nix/storage"
	"github.com/G-Node/nix-sub001/types"
)

// Mode controls how an existing file is treated on Open
type Mode int

const (
	// ReadOnly requires an existing file and refuses to save
	ReadOnly Mode = iota
	// ReadWrite loads an existing file or starts an empty tree
	ReadWrite
	// Overwrite always starts an empty tree, replacing the file on save
	Overwrite
)

// String returns the lower case name of the mode
func (m Mode) String() string {
	switch m {
	case ReadOnly:
		return "readonly"
	case ReadWrite:
		return "readwrite"
	case Overwrite:
		return "overwrite"
	default:
		return "unknown"
	}
}

// Constants for file locking
const (
	lockTimeout    = 3 * time.Second
	lockMaxRetries = 3
	lockRetryDelay = 100 * time.Millisecond
)

// Store binds a storage tree to a file on disk
type Store struct {
	path        string
	mode        Mode
	format      Format
	fs          FileSystem
	lockFactory FileLockFactory
	fileLock    FileLock
	lockManager *storage.LockManager
	logger      *slog.Logger
	timeFunc    func() time.Time
}

// Open prepares the file at path and returns the store with the tree it holds
func Open(path string, mode Mode, opts ...Option) (*Store, *storage.Node, error) {
	s := &Store{
		path:        path,
		mode:        mode,
		format:      FormatFor(path),
		lockManager: storage.NewLockManager(),
		timeFunc:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.fs == nil {
		s.fs = OSFileSystem{}
	}
	if s.lockFactory == nil {
		s.lockFactory = flockFactory{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.fileLock = s.lockFactory.New(path + ".lock")

	if mode == Overwrite {
		s.logger.Debug("starting empty tree", "path", path, "mode", mode.String())
		return s, storage.NewRoot(), nil
	}

	root, err := s.Load()
	if err != nil {
		return nil, nil, err
	}
	return s, root, nil
}

// Path returns the file path
func (s *Store) Path() string {
	return s.path
}

// Mode returns the open mode
func (s *Store) Mode() Mode {
	return s.mode
}

// Format returns the document format used for this file
func (s *Store) Format() Format {
	return s.format
}

// acquireLock attempts to acquire an exclusive file lock with retry logic
func (s *Store) acquireLock(ctx context.Context) error {
	for i := 0; i < lockMaxRetries; i++ {
		locked, err := s.fileLock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}
		if locked {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	return fmt.Errorf("failed to acquire lock after %d attempts", lockMaxRetries)
}

// withFileLock runs fn holding both the in-process and the file lock
func (s *Store) withFileLock(op storage.OperationType, fn func() error) error {
	return s.lockManager.Execute(op, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
		defer cancel()

		if err := s.acquireLock(ctx); err != nil {
			return err
		}
		defer func() { _ = s.fileLock.Unlock() }()

		return fn()
	})
}

// Load reads the file and returns a freshly built tree. A missing file
// yields an empty tree unless the store is read-only.
func (s *Store) Load() (*storage.Node, error) {
	var root *storage.Node
	err := s.withFileLock(storage.ReadOperation, func() error {
		var err error
		root, err = s.load()
		return err
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}

// load reads the document; the caller must hold the file lock
func (s *Store) load() (*storage.Node, error) {
	if _, err := s.fs.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		if s.mode == ReadOnly {
			return nil, fmt.Errorf("cannot open %s read-only: %w", s.path, err)
		}
		s.logger.Debug("file does not exist yet, starting empty tree", "path", s.path)
		return storage.NewRoot(), nil
	}

	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return storage.NewRoot(), nil
	}

	var doc document
	if err := unmarshal(s.format, data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.format, err)
	}

	root := storage.NewRoot()
	var links []pendingLink
	if err := decodeNode(root, doc.Root, &links); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	for _, p := range links {
		target, ok := root.Lookup(p.link.Target)
		if !ok {
			s.logger.Warn("dropping dangling link", "owner", p.owner.Path(), "link", p.link.Name, "target", p.link.Target)
			continue
		}
		if err := p.owner.CreateLink(p.link.Name, target); err != nil {
			return nil, fmt.Errorf("failed to restore link %s in %s: %w", p.link.Name, p.owner.Path(), err)
		}
	}

	s.logger.Debug("loaded file", "path", s.path, "format", s.format.String(), "links", len(links))
	return root, nil
}

// Save writes the tree to the file atomically
func (s *Store) Save(root *storage.Node) error {
	if s.mode == ReadOnly {
		return fmt.Errorf("cannot save %s: %w", s.path, types.ErrReadOnly)
	}
	return s.withFileLock(storage.WriteOperation, func() error {
		return s.save(root)
	})
}

// save writes the document; the caller must hold the file lock
func (s *Store) save(root *storage.Node) error {
	rootDoc, err := encodeNode(root)
	if err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}
	doc := document{
		Version: documentVersion,
		SavedAt: s.timeFunc().UTC(),
		Root:    rootDoc,
	}

	data, err := marshal(s.format, &doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.format, err)
	}

	// Write to file atomically (write to temp file, then rename)
	tmpFile := s.path + ".tmp"
	if err := s.fs.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := s.fs.Rename(tmpFile, s.path); err != nil {
		_ = s.fs.Remove(tmpFile)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	s.logger.Debug("saved file", "path", s.path, "format", s.format.String(), "bytes", len(data))
	return nil
}

// Close releases the store. The lock file is removed; data is only written by Save.
func (s *Store) Close() error {
	return s.lockManager.Execute(storage.WriteOperation, func() error {
		_ = s.fs.Remove(s.path + ".lock")
		return nil
	})
}
