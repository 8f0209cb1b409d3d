package primitives

import (
	"hash/fnv"
	"os"
	"path/filepath"
)

// Filepath is a type-safe wrapper around the path of a table's backing file.
//
// Example usage:
//
//	dataDir := primitives.Filepath("/data")
//	tablePath := dataDir.Join("users.dat")
//	tableID, err := tablePath.TableID()
type Filepath string

// Hash generates a FileID from the path using FNV-1a hashing.
// The same path string always produces the same FileID.
func (f Filepath) Hash() FileID {
	h := fnv.New64a()
	_, _ = h.Write([]byte(f))
	return FileID(h.Sum64())
}

// Canonical returns the absolute, cleaned form of the path with symlinks resolved
// when the file exists. Two spellings of the same backing file canonicalize to the
// same Filepath.
func (f Filepath) Canonical() (Filepath, error) {
	abs, err := filepath.Abs(string(f))
	if err != nil {
		return "", err
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return Filepath(filepath.Clean(abs)), nil
}

// TableID derives the stable table identifier of the file at this path.
// The identifier is computed from the canonical path, so repeated lookups of the
// same backing file agree and distinct files differ.
//
// Returns:
//   - TableID: hash of the canonical path
//   - error: if the path cannot be made absolute
func (f Filepath) TableID() (TableID, error) {
	canonical, err := f.Canonical()
	if err != nil {
		return 0, err
	}
	return TableID(canonical.Hash()), nil
}

// Dir returns the directory portion of the path.
func (f Filepath) Dir() string {
	return filepath.Dir(string(f))
}

// Base returns the last element of the path.
func (f Filepath) Base() string {
	return filepath.Base(string(f))
}

// Join appends path elements and returns a new Filepath.
func (f Filepath) Join(elem ...string) Filepath {
	parts := append([]string{string(f)}, elem...)
	return Filepath(filepath.Join(parts...))
}

// String implements fmt.Stringer.
func (f Filepath) String() string {
	return string(f)
}

// IsEmpty reports whether the path is the empty string.
func (f Filepath) IsEmpty() bool {
	return f == ""
}

// Exists checks whether the file exists on the filesystem.
func (f Filepath) Exists() bool {
	_, err := os.Stat(string(f))
	return err == nil
}

// Remove deletes the file. Removing a missing file is not an error.
func (f Filepath) Remove() error {
	if err := os.Remove(string(f)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MkdirAll creates the parent directory of the path.
func (f Filepath) MkdirAll(perm os.FileMode) error {
	return os.MkdirAll(f.Dir(), perm)
}
