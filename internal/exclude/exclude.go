// Package exclude turns a parsed ignore list into the exclusion set written to
// a workspace folder's settings.
package exclude

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/CageChen/hideme/internal/fs"
	gitignore "github.com/denormal/go-gitignore"
)

// Mode selects how ignore entries are interpreted
type Mode string

// Supported modes.
const (
	// ModePattern treats each entry as a regular expression that must match a
	// whole top-level entry name.
	ModePattern Mode = "pattern"
	// ModeLiteral writes each entry as-is without looking at the folder.
	ModeLiteral Mode = "literal"
	// ModeGitignore treats the entries as gitignore rules.
	ModeGitignore Mode = "gitignore"
)

// ParseMode validates a mode name. The empty string selects ModePattern.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case "", ModePattern:
		return ModePattern, nil
	case ModeLiteral:
		return ModeLiteral, nil
	case ModeGitignore:
		return ModeGitignore, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want pattern, literal or gitignore)", name)
	}
}

// Set maps a directory entry name to its hidden flag.
type Set map[string]bool

// Names returns the hidden names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name, hidden := range s {
		if hidden {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Equal reports whether both sets hold the same names with the same flags.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for name, hidden := range s {
		if v, ok := other[name]; !ok || v != hidden {
			return false
		}
	}
	return true
}

// Rules is a compiled ignore list.
type Rules struct {
	mode     Mode
	entries  []string
	patterns []*regexp.Regexp
	ignore   gitignore.GitIgnore
}

// Compile prepares entries for matching under mode. A malformed pattern is
// returned as an error.
func Compile(mode Mode, entries []string) (*Rules, error) {
	r := &Rules{mode: mode, entries: entries}

	switch mode {
	case ModeLiteral:
	case ModePattern:
		r.patterns = make([]*regexp.Regexp, 0, len(entries))
		for _, entry := range entries {
			// The bare entry must parse on its own so unbalanced groups
			// cannot escape the anchors.
			if _, err := regexp.Compile(entry); err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", entry, err)
			}
			re, err := regexp.Compile("^(?:" + entry + ")$")
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", entry, err)
			}
			r.patterns = append(r.patterns, re)
		}
	case ModeGitignore:
		var parseErr error
		r.ignore = gitignore.New(strings.NewReader(strings.Join(entries, "\n")), "", func(e gitignore.Error) bool {
			if parseErr == nil {
				parseErr = e
			}
			return true
		})
		if parseErr != nil {
			return nil, fmt.Errorf("invalid gitignore rule: %w", parseErr)
		}
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	return r, nil
}

// Mode returns the mode the rules were compiled for.
func (r *Rules) Mode() Mode {
	return r.mode
}

// NeedsListing reports whether Build inspects the folder's entries.
func (r *Rules) NeedsListing() bool {
	return r.mode != ModeLiteral
}

// Build computes a fresh exclusion set from the folder's immediate entries.
// In literal mode the listing is ignored.
func (r *Rules) Build(listing []fs.DirEntry) Set {
	set := make(Set)

	if r.mode == ModeLiteral {
		for _, entry := range r.entries {
			set[entry] = true
		}
		return set
	}

	for _, item := range listing {
		if r.matches(item) {
			set[item.Name] = true
		}
	}
	return set
}

func (r *Rules) matches(item fs.DirEntry) bool {
	switch r.mode {
	case ModePattern:
		for _, re := range r.patterns {
			if re.MatchString(item.Name) {
				return true
			}
		}
	case ModeGitignore:
		if m := r.ignore.Relative(item.Name, item.IsDir); m != nil {
			return m.Ignore()
		}
	}
	return false
}

// Apply lists the root of fsys when the mode needs it and builds the set.
func (r *Rules) Apply(fsys fs.FileSystem) (Set, error) {
	var listing []fs.DirEntry
	if r.NeedsListing() {
		var err error
		listing, err = fsys.ReadDir(".")
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", fsys.Root(), err)
		}
	}
	return r.Build(listing), nil
}

// Build compiles entries and builds the set for listing in one step.
func Build(mode Mode, entries []string, listing []fs.DirEntry) (Set, error) {
	r, err := Compile(mode, entries)
	if err != nil {
		return nil, err
	}
	return r.Build(listing), nil
}
