package fs

import (
	"os"
	"path/filepath"
	"sort"
)

// LocalFS implements FileSystem using the local filesystem.
type LocalFS struct {
	root string
}

// NewLocalFS creates a LocalFS rooted at the given directory.
func NewLocalFS(root string) *LocalFS {
	return &LocalFS{root: root}
}

// Root returns the directory the LocalFS is rooted at.
func (l *LocalFS) Root() string {
	return l.root
}

func (l *LocalFS) abs(name string) string {
	if name == "" || name == "." {
		return l.root
	}
	return filepath.Join(l.root, name)
}

// ReadFile reads the file at the given path relative to the root.
func (l *LocalFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(l.abs(name))
}

// ReadDir lists the immediate children of the directory at the given path
// relative to the root, sorted by name.
func (l *LocalFS) ReadDir(name string) ([]DirEntry, error) {
	entries, err := os.ReadDir(l.abs(name))
	if err != nil {
		return nil, err
	}
	result := make([]DirEntry, len(entries))
	for i, e := range entries {
		result[i] = DirEntry{
			Name:  e.Name(),
			IsDir: e.IsDir(),
		}
	}
	return result, nil
}

// MapFS is an in-memory FileSystem. Files maps a root-relative path to its
// content; a directory is any prefix of a file path.
type MapFS struct {
	RootPath string
	Files    map[string]string
}

// Root returns the nominal root path.
func (m *MapFS) Root() string {
	return m.RootPath
}

// ReadFile returns the content stored under name.
func (m *MapFS) ReadFile(name string) ([]byte, error) {
	content, ok := m.Files[filepath.ToSlash(name)]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: filepath.Join(m.RootPath, name), Err: os.ErrNotExist}
	}
	return []byte(content), nil
}

// ReadDir lists the immediate children of name, sorted by name.
func (m *MapFS) ReadDir(name string) ([]DirEntry, error) {
	prefix := ""
	if name != "" && name != "." {
		prefix = filepath.ToSlash(name) + "/"
	}

	seen := make(map[string]bool)
	for p := range m.Files {
		if len(p) <= len(prefix) || p[:len(prefix)] != prefix {
			continue
		}
		rest := p[len(prefix):]
		child, isDir := rest, false
		for i := 0; i < len(rest); i++ {
			if rest[i] == '/' {
				child, isDir = rest[:i], true
				break
			}
		}
		seen[child] = seen[child] || isDir
	}

	entries := make([]DirEntry, 0, len(seen))
	for child, isDir := range seen {
		entries = append(entries, DirEntry{Name: child, IsDir: isDir})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
