package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/holdcheck/internal/config"
)

// ExistingError reports a configuration file that would be overwritten.
type ExistingError struct {
	Path string
}

func (e *ExistingError) Error() string {
	return fmt.Sprintf("%s already exists", e.Path)
}

// CheckExisting returns an *ExistingError if dir already holds a holdcheck.yml.
func CheckExisting(dir string) error {
	path := filepath.Join(dir, config.DefaultFile)
	if _, err := os.Stat(path); err == nil {
		return &ExistingError{Path: path}
	}
	return nil
}

// IsExistingError checks if an error is an ExistingError.
func IsExistingError(err error) bool {
	_, ok := err.(*ExistingError)
	return ok
}
