// Package backup copies the persisted store files to and from a user-chosen
// location. No format transformation: a backup is the files themselves.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Export copies every regular file in dataDir into destDir, creating it if
// needed.
func Export(dataDir, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	return copyDir(dataDir, destDir)
}

// Import copies backup files over the data directory. The stores must be
// reopened afterwards; callers run it while the service is not serving.
func Import(srcDir, dataDir string) error {
	if _, err := os.Stat(srcDir); err != nil {
		return fmt.Errorf("backup source: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	return copyDir(srcDir, dataDir)
}

func copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := copyFile(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
