package vfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
)

// ErrAtomicWriteDirSync indicates the parent directory could not be
// synced after rename. When returned, the new file is in place but
// durability is not guaranteed.
var ErrAtomicWriteDirSync = errors.New("vfs: dir sync")

// AtomicWriter writes files atomically using the temp-file-then-rename
// pattern: write to a temp sibling, fsync it, rename over the target,
// fsync the parent directory. This is the primary write path for
// internal/snapshot (spec.md §4.5: "writes to a temporary sibling file.
// On successful fsync, it atomically renames the temp file over the
// snapshot file"), adapted from the teacher's pkg/fs.AtomicWriter.
type AtomicWriter struct {
	fs FS
}

// NewAtomicWriter creates an AtomicWriter over fs. Panics if fs is nil.
func NewAtomicWriter(fs FS) *AtomicWriter {
	if fs == nil {
		panic("fs is nil")
	}
	return &AtomicWriter{fs: fs}
}

// AtomicWriteOptions configures Write.
type AtomicWriteOptions struct {
	// SyncDir controls whether the parent directory is synced after
	// rename. Default: true.
	SyncDir bool

	// Perm specifies the file permissions. Must be non-zero.
	Perm os.FileMode
}

// DefaultOptions returns the default atomic write options.
func (*AtomicWriter) DefaultOptions() AtomicWriteOptions {
	return AtomicWriteOptions{SyncDir: true, Perm: 0o644}
}

// Write writes data from r to path atomically and durably. On any
// failure the temp file is removed and an error is returned; spec.md
// §4.5 requires the caller retry on its own schedule, not here.
func (w *AtomicWriter) Write(path string, r io.Reader, opts AtomicWriteOptions) error {
	if r == nil {
		panic("reader is nil")
	}
	if path == "" {
		return errors.New("vfs: path is empty")
	}
	if opts.Perm == 0 {
		return errors.New("vfs: opts.Perm must be non-zero")
	}

	dir, base := filepath.Split(path)
	if base == "" || base == "." {
		return fmt.Errorf("vfs: invalid path %q", path)
	}
	if dir == "" {
		dir = "."
	}
	dir = filepath.Clean(dir)

	tmpFile, tmpPath, err := createAtomicTempFile(w.fs, dir, base, opts.Perm)
	if err != nil {
		return err
	}

	cleanup := func() error {
		closeErr := closeNamed(tmpPath, tmpFile)
		removeErr := removeIfExists(w.fs, tmpPath)
		return errors.Join(closeErr, removeErr)
	}

	if err := tmpFile.Chmod(opts.Perm); err != nil {
		return errors.Join(fmt.Errorf("vfs: chmod temp file %q: %w", tmpPath, err), cleanup())
	}

	if err := writeAndSync(tmpFile, tmpPath, r); err != nil {
		return errors.Join(err, cleanup())
	}

	if err := w.fs.Rename(tmpPath, path); err != nil {
		return errors.Join(fmt.Errorf("vfs: rename: %w", err), cleanup())
	}

	cleanupErr := cleanup()

	if opts.SyncDir {
		if err := fsyncDir(w.fs, dir); err != nil {
			return errors.Join(err, cleanupErr)
		}
	}

	return nil
}

// WriteWithDefaults writes r to path atomically using DefaultOptions.
func (w *AtomicWriter) WriteWithDefaults(path string, r io.Reader) error {
	return w.Write(path, r, w.DefaultOptions())
}

func writeAndSync(file File, path string, r io.Reader) error {
	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("vfs: write temp file %q: %w", path, err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("vfs: sync temp file %q: %w", path, err)
	}
	return nil
}

const atomicWriteMaxAttempts = 10000

var atomicWriteCounter atomic.Uint64

func createAtomicTempFile(fs FS, dir, base string, perm os.FileMode) (File, string, error) {
	for range atomicWriteMaxAttempts {
		seq := atomicWriteCounter.Add(1)
		path := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d", base, seq))

		file, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if err == nil {
			return file, path, nil
		}
		if os.IsExist(err) {
			continue
		}
		return nil, "", fmt.Errorf("vfs: create temp file: %w", err)
	}
	return nil, "", fmt.Errorf("vfs: exhausted temp file attempts in %q", dir)
}

func fsyncDir(fs FS, dirPath string) error {
	dirFd, err := fs.Open(dirPath)
	if err != nil {
		return errors.Join(ErrAtomicWriteDirSync, fmt.Errorf("open dir %q: %w", dirPath, err))
	}
	if err := dirFd.Sync(); err != nil {
		return errors.Join(ErrAtomicWriteDirSync, fmt.Errorf("%q: %w", dirPath, err), closeNamed(dirPath, dirFd))
	}
	return closeNamed(dirPath, dirFd)
}

func closeNamed(path string, file File) error {
	if err := file.Close(); err != nil {
		return fmt.Errorf("vfs: close %q: %w", path, err)
	}
	return nil
}

func removeIfExists(fs FS, path string) error {
	if err := fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("vfs: remove temp file %q: %w", path, err)
	}
	return nil
}
