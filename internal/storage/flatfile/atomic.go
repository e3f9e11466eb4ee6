package flatfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeAtomically заменяет файл целиком: пишет во временный файл в том же
// каталоге, делает fsync и переименовывает поверх targetPath.
// Права исходного файла сохраняются.
func writeAtomically(targetPath string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(targetPath); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(targetPath)
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(targetPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", targetPath, err)
	}

	tmpName := tmpFile.Name()
	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file %s: %w", tmpName, err)
	}

	if err := tmpFile.Chmod(mode); err != nil {
		tmpFile.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file %s: %w", tmpName, err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file %s: %w", tmpName, err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, targetPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file %s to %s: %w", tmpName, targetPath, err)
	}

	return nil
}
