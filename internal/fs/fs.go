// Package fs provides a filesystem abstraction over a single workspace folder.
package fs

// DirEntry represents a single immediate child of a workspace folder.
type DirEntry struct {
	Name  string
	IsDir bool
}

// FileSystem abstracts the reads hideme performs on a workspace folder so
// tests can substitute an in-memory tree.
type FileSystem interface {
	Root() string
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]DirEntry, error)
}
