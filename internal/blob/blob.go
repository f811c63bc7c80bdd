// Package blob is the byte-level file abstraction the storage engine sits
// on. Every operation opens the file, performs one I/O, and closes it on
// all exit paths; the engine holds no long-lived file handles.
package blob

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hndinh/tabstore/internal/alias/util"
	"github.com/hndinh/tabstore/internal/logging"
)

const (
	fileMode0644 = 0o644
	dirMode0755  = 0o755
)

// ErrIO wraps any failure of the underlying filesystem, including
// partial reads.
var ErrIO = errors.New("blob: I/O error")

// Store reads and writes files at byte offsets.
type Store interface {
	// Read fills dst from path starting at offset. dst is zero-filled
	// before the read; a short read is an error.
	Read(path string, dst []byte, offset int64) error
	// Write stores src at offset, creating the file (and parent
	// directories) if needed. Bytes outside [offset, offset+len(src))
	// are left untouched.
	Write(path string, src []byte, offset int64) error
	// Append adds src at the end of the file.
	Append(path string, src []byte) error
	Exists(path string) bool
	Create(path string) error
	Size(path string) (int64, error)
}

var _ Store = (*FileStore)(nil)

// FileStore is the local-filesystem Store.
type FileStore struct {
	logger logging.Logger
}

func NewFileStore(logger logging.Logger) *FileStore {
	if logger == nil {
		logger = logging.Global()
	}
	return &FileStore{logger: logger}
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, dirMode0755)
}

func (fs *FileStore) Read(path string, dst []byte, offset int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	defer util.CloseFileFunc(f)

	for i := range dst {
		dst[i] = 0
	}

	n, err := f.ReadAt(dst, offset)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%w: read %s at %d: %v", ErrIO, path, offset, err)
	}
	if n < len(dst) {
		return fmt.Errorf("%w: partial read from %s: got %d of %d bytes", ErrIO, path, n, len(dst))
	}
	return nil
}

func (fs *FileStore) Write(path string, src []byte, offset int64) error {
	if err := ensureParentDir(path); err != nil {
		return fmt.Errorf("%w: mkdir for %s: %v", ErrIO, path, err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, fileMode0644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}

	n, err := f.WriteAt(src, offset)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: write %s at %d: %v", ErrIO, path, offset, err)
	}
	if n != len(src) {
		return fmt.Errorf("%w: short write to %s: wrote %d of %d bytes", ErrIO, path, n, len(src))
	}
	fs.logger.Log(fmt.Sprintf("wrote %d bytes to %s at offset %d", len(src), path, offset))
	return nil
}

func (fs *FileStore) Append(path string, src []byte) error {
	if err := ensureParentDir(path); err != nil {
		return fmt.Errorf("%w: mkdir for %s: %v", ErrIO, path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, fileMode0644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}

	_, err = f.Write(src)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: append %s: %v", ErrIO, path, err)
	}
	return nil
}

func (fs *FileStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (fs *FileStore) Create(path string) error {
	if err := ensureParentDir(path); err != nil {
		return fmt.Errorf("%w: mkdir for %s: %v", ErrIO, path, err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, fileMode0644)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrIO, path, err)
	}
	return nil
}

func (fs *FileStore) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: stat %s: %v", ErrIO, path, err)
	}
	return info.Size(), nil
}
