//go:build unix

package cache

import (
	"errors"
	"os"
	"syscall"
	"time"
)

// ErrLockTimeout is returned when another process holds the lock for
// longer than the lock's timeout.
var ErrLockTimeout = errors.New("timed out waiting for cache lock")

// DefaultLockTimeout bounds how long Save waits for a concurrent writer.
const DefaultLockTimeout = 2 * time.Second

// FileLock provides exclusive file-based locking using flock.
type FileLock struct {
	path    string
	timeout time.Duration
	file    *os.File
}

// NewFileLock creates a new file lock for the given path.
// The lock file will be created if it doesn't exist.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path, timeout: DefaultLockTimeout}
}

// Lock acquires an exclusive lock on the file, polling until the lock's
// timeout elapses.
func (l *FileLock) Lock() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(l.timeout)
	for {
		err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			l.file = f
			return nil
		}
		if !errors.Is(err, syscall.EWOULDBLOCK) {
			f.Close()
			return err
		}
		if time.Now().After(deadline) {
			f.Close()
			return ErrLockTimeout
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Unlock releases the lock and closes the file.
// Unlocking an unlocked FileLock is a no-op.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		l.file.Close()
		l.file = nil
		return err
	}

	err := l.file.Close()
	l.file = nil
	return err
}
