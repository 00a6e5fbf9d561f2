package workspace

import (
	"github.com/CageChen/hideme/internal/exclude"
	"github.com/CageChen/hideme/internal/utils"
)

// Option configures a Syncer
type Option func(*Syncer)

// WithMode sets how ignore entries are interpreted
func WithMode(mode exclude.Mode) Option {
	return func(s *Syncer) {
		s.mode = mode
	}
}

// WithIgnoreFile sets the ignore file name looked up in the workspace root
func WithIgnoreFile(name string) Option {
	return func(s *Syncer) {
		if name != "" {
			s.ignoreFile = name
		}
	}
}

// WithLogger sets the logger
func WithLogger(log utils.Logger) Option {
	return func(s *Syncer) {
		if log != nil {
			s.log = log
		}
	}
}
