// Package filex contains the small amount of local file handling the client
// needs: download directories, saved payloads and short-lived view copies.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidName = errors.New("invalid file name")

// EnsureSubdDir creates dirName under the current working directory (or uses
// it as-is when absolute) and returns the absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// SafeName strips any directory part from a server-supplied file name so it
// can never escape the target directory.
func SafeName(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." || base == "" {
		return "", ErrInvalidName
	}
	return base, nil
}

// SaveFile writes data to dir/name, overwriting any previous file.
func SaveFile(dir, name string, data []byte) (string, error) {
	safe, err := SafeName(name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, safe)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// WriteTemp materializes data as a temporary file whose name ends with name.
// The caller must invoke release once it no longer needs the file.
func WriteTemp(name string, data []byte) (path string, release func(), err error) {
	safe, err := SafeName(name)
	if err != nil {
		return "", nil, err
	}

	f, err := os.CreateTemp("", "eco-*-"+safe)
	if err != nil {
		return "", nil, fmt.Errorf("create temp: %w", err)
	}
	path = f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, fmt.Errorf("write temp: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, fmt.Errorf("close temp: %w", err)
	}

	return path, func() { _ = os.Remove(path) }, nil
}
