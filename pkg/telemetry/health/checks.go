package health

import (
	"context"
	"fmt"
	"os"
)

// Pinger is implemented by backends that can verify their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DirectoryCheck verifies that path exists and is a directory.
func DirectoryCheck(path string) CheckFunc {
	return func(ctx context.Context) error {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("directory not found: %s", path)
		}
		if !info.IsDir() {
			return fmt.Errorf("not a directory: %s", path)
		}
		return nil
	}
}

// FileCheck verifies that path exists, is a regular file and can be opened.
func FileCheck(path string) CheckFunc {
	return func(ctx context.Context) error {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("file not found: %s", path)
		}
		if info.IsDir() {
			return fmt.Errorf("expected a file, found a directory: %s", path)
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("file not readable: %w", err)
		}
		return f.Close()
	}
}

// PingCheck verifies a backend connection.
func PingCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}

// PathCheck verifies that path exists, as a file or a directory.
func PathCheck(path string) CheckFunc {
	return func(ctx context.Context) error {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("path not found: %s", path)
		}
		return nil
	}
}
