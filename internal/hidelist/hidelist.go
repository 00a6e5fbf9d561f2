// Package hidelist reads the list of names to hide from a workspace's .hideme file.
package hidelist

import (
	"strings"

	"github.com/CageChen/hideme/internal/fs"
	"github.com/CageChen/hideme/internal/utils"
)

// DefaultFileName is the ignore file looked up in the workspace root
const DefaultFileName = ".hideme"

// Parse splits content into lines, trims each one and drops the empty ones.
// Entry order follows the file.
func Parse(content string) []string {
	var entries []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		entries = append(entries, line)
	}
	return entries
}

// Read loads and parses the ignore file named fileName from the root of fsys.
// A read failure is logged and yields an empty list.
func Read(fsys fs.FileSystem, fileName string, log utils.Logger) []string {
	if fileName == "" {
		fileName = DefaultFileName
	}
	data, err := fsys.ReadFile(fileName)
	if err != nil {
		log.Warn("Error reading %s file in %s: %v", fileName, fsys.Root(), err)
		return nil
	}
	entries := Parse(string(data))
	log.Debug("Read %d entr(ies) from %s in %s", len(entries), fileName, fsys.Root())
	return entries
}

// IsIgnoreFile reports whether path names an ignore file. Any path ending in
// fileName matches, nested ones included.
func IsIgnoreFile(path, fileName string) bool {
	if fileName == "" {
		fileName = DefaultFileName
	}
	return strings.HasSuffix(path, fileName)
}
