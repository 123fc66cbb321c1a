package credstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// FileStore persists credentials in a dotenv-style file. Set rewrites the file
// in place: the line assigning the key is replaced, every other line (comments,
// blank lines, unrelated keys) is preserved, and a missing key is appended.
// The file stays editable by hand and by other dotenv tooling.
type FileStore struct {
	path string
}

// Compile-time check to ensure FileStore implements Store
var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore for the given path, creating parent
// directories with 0700 permissions if they don't exist. The file itself is
// created on first Set.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}

	return &FileStore{
		path: path,
	}, nil
}

// Path returns the location of the underlying file.
func (f *FileStore) Path() string {
	return f.path
}

// Get parses the file as dotenv and returns the value stored under key.
func (f *FileStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", key, ErrNotSet)
		}
		return "", err
	}
	defer func() { _ = file.Close() }()

	values, err := godotenv.Parse(file)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", f.path, err)
	}

	value := values[key]
	if value == "" {
		return "", fmt.Errorf("%s: %w", key, ErrNotSet)
	}
	return value, nil
}

// Set replaces the line assigning key, or appends one when the key is absent.
// The rewrite is deliberately not a temp-file swap: the file is shared with
// operators and external schedulers that reference it by path and may hold it
// open, so the same inode is rewritten. A missing file is created with 0600
// permissions.
func (f *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	assignment := key + "=" + quoteIfNeeded(value)

	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		return os.WriteFile(f.path, []byte(assignment+"\n"), 0o600)
	}

	lines := strings.Split(string(data), "\n")
	replaced := false
	for i, line := range lines {
		if definesKey(line, key) {
			lines[i] = assignment
			replaced = true
			break
		}
	}
	if !replaced {
		// Append after the last non-empty line so the file keeps a single
		// trailing newline.
		for len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		lines = append(lines, assignment)
	}

	out := strings.Join(lines, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return os.WriteFile(f.path, []byte(out), 0o600)
}

// definesKey reports whether a dotenv line assigns the given key, tolerating
// leading whitespace and an optional "export" prefix.
func definesKey(line, key string) bool {
	s := strings.TrimLeft(line, " \t")
	if rest, ok := strings.CutPrefix(s, "export"); ok {
		if len(rest) > 0 && (rest[0] == ' ' || rest[0] == '\t') {
			s = strings.TrimLeft(rest, " \t")
		}
	}
	name, _, ok := strings.Cut(s, "=")
	if !ok {
		return false
	}
	return strings.TrimRight(name, " \t") == key
}

// quoteIfNeeded wraps values that a bare KEY=value line could not carry.
// Tokens are URL-safe strings and stay unquoted in practice.
func quoteIfNeeded(v string) string {
	if !strings.ContainsAny(v, " \t\n\r\"'#\\$") {
		return v
	}
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`).Replace(v)
	return `"` + escaped + `"`
}
