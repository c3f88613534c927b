package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// NotFoundError reports a root path that does not exist, is not a directory,
// or cannot be accessed. It is fatal: nothing is scanned when a root fails
// this check. Err holds the underlying stat error, if any.
type NotFoundError struct {
	Path   string
	Reason string
	Err    error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Unwrap returns the underlying stat error.
func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// Is reports a match against fs.ErrNotExist for missing roots and roots
// that are not directories. An inaccessible root does not match.
func (e *NotFoundError) Is(target error) bool {
	if target != fs.ErrNotExist {
		return false
	}
	return e.Err == nil || errors.Is(e.Err, fs.ErrNotExist)
}

// CheckDir returns a *NotFoundError unless path is an existing directory.
func CheckDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		reason := "cannot access directory"
		if errors.Is(err, fs.ErrNotExist) {
			reason = "directory not found"
		}
		return &NotFoundError{Path: path, Reason: reason, Err: err}
	}
	if !info.IsDir() {
		return &NotFoundError{Path: path, Reason: "not a directory"}
	}
	return nil
}
