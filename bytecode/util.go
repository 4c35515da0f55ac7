package bytecode

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile serializes the program and writes it atomically: the bytes go to
// a temporary file in the destination directory which is renamed into place
// only after a successful write. A failed or cancelled compilation never
// leaves a partial artifact on disk.
func WriteFile(p *Program, path string) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot create temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("cannot write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cannot close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cannot rename %s to %s: %w", tmpName, path, err)
	}
	return nil
}

// ReadFile loads and validates a serialized program.
func ReadFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
