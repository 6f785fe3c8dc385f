package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrTooLarge is returned when an input exceeds the permitted size.
var ErrTooLarge = errors.New("input exceeds size limit")

// ReadLimited reads all of r, failing with ErrTooLarge past limit bytes.
// limit <= 0 means unlimited.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}

// ReadFileLimited opens sourcePath and reads it with ReadLimited.
func ReadFileLimited(sourcePath string, limit int64) ([]byte, error) {
	sourceFile, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()
	return ReadLimited(sourceFile, limit)
}
