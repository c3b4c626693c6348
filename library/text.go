package library

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TextBackend stores publications and users in two delimited text files, one
// encoded record per line.
type TextBackend struct {
	publicationsPath string
	usersPath        string
}

// NewTextBackend returns a text backend rooted at opts.
func NewTextBackend(opts StorageOptions) *TextBackend {
	return &TextBackend{
		publicationsPath: opts.publicationsPath(),
		usersPath:        opts.usersPath(),
	}
}

// Import reads publications, then users, into a fresh catalog. Any failure
// discards the partially filled catalog.
func (b *TextBackend) Import() (*Catalog, error) {
	c := NewCatalog()
	err := readLines(b.publicationsPath, func(line string) error {
		p, err := DecodePublication(line)
		if err != nil {
			return err
		}
		return c.AddPublication(p)
	})
	if err != nil {
		return nil, err
	}
	err = readLines(b.usersPath, func(line string) error {
		u, err := DecodeUser(line)
		if err != nil {
			return err
		}
		return c.AddUser(u)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Export overwrites both files with the catalog contents, publications first.
func (b *TextBackend) Export(c *Catalog) error {
	pubs := c.SortedPublications(ByTitle)
	err := writeLines(b.publicationsPath, len(pubs), func(i int) string {
		return EncodePublication(pubs[i])
	})
	if err != nil {
		return err
	}
	users := c.SortedUsers(ByLastName)
	return writeLines(b.usersPath, len(users), func(i int) string {
		return EncodeUser(users[i])
	})
}

// ---------------------------------------------------------------------------
// File helpers
// ---------------------------------------------------------------------------

// readLines feeds every non-blank line of path to fn, stopping at the first
// error.
func readLines(path string, fn func(line string) error) error {
	f, err := os.Open(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return &ResourceNotFoundError{Resource: path}
	}
	if err != nil {
		return &ImportError{Resource: path, Reason: "open", Err: err}
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(line); err != nil {
			return &ImportError{Resource: path, Reason: fmt.Sprintf("line %d", lineNo), Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return &ImportError{Resource: path, Reason: "read", Err: err}
	}
	return nil
}

// writeLines truncates path and writes n lines produced by line.
func writeLines(path string, n int, line func(i int) string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &ExportError{Resource: path, Err: fmt.Errorf("create dir: %w", err)}
		}
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return &ExportError{Resource: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &ExportError{Resource: path, Err: cerr}
		}
	}()

	w := bufio.NewWriter(f)
	for i := range n {
		if _, err := io.WriteString(w, line(i)+"\n"); err != nil {
			return &ExportError{Resource: path, Err: err}
		}
	}
	if err := w.Flush(); err != nil {
		return &ExportError{Resource: path, Err: err}
	}
	return nil
}
