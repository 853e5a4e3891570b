package validation

import (
	"errors"
	"fmt"
)

// ValidateUpload checks an upload's name and declared size against the
// configured cap before any bytes reach object storage.
func ValidateUpload(filename string, size, maxSize int64) error {
	if filename == "" {
		return errors.New("file name is required")
	}

	if size <= 0 {
		return errors.New("file is empty")
	}

	if size > maxSize {
		return fmt.Errorf("file too large: maximum size is %d MB", maxSize/(1<<20))
	}

	return nil
}
