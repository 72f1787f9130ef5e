package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// rotatingFile appends to path until the next write would pass limit bytes,
// then shifts path to path.1 (path.1 to path.2 and so on, up to backups) and
// starts a fresh file. With no backups the file is truncated in place.
type rotatingFile struct {
	mu      sync.Mutex
	path    string
	limit   int64
	backups int
	f       *os.File
	written int64
}

func newRotatingFile(path string, maxMB, backups int) (*rotatingFile, error) {
	if maxMB <= 0 {
		maxMB = 10
	}
	r := &rotatingFile{path: path, limit: int64(maxMB) << 20, backups: max(backups, 0)}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}
	if r.written > 0 && r.written+int64(len(p)) > r.limit {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := r.f.Write(p)
	r.written += int64(n)
	return n, err
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

func (r *rotatingFile) open() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	r.f = f
	r.written = info.Size()
	return nil
}

func (r *rotatingFile) rotate() error {
	_ = r.f.Close()
	r.f = nil
	if r.backups == 0 {
		f, err := os.OpenFile(r.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		r.f, r.written = f, 0
		return nil
	}
	for i := r.backups - 1; i >= 1; i-- {
		if err := os.Rename(r.backupName(i), r.backupName(i+1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if err := os.Rename(r.path, r.backupName(1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return r.open()
}

func (r *rotatingFile) backupName(i int) string {
	return fmt.Sprintf("%s.%d", r.path, i)
}
