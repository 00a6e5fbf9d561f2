// Package workspace keeps the exclusion settings of a set of workspace folders
// in sync with the ignore file at the workspace root.
package workspace

import (
	"errors"
	"fmt"
	"sync"

	"github.com/CageChen/hideme/internal/config"
	"github.com/CageChen/hideme/internal/exclude"
	"github.com/CageChen/hideme/internal/fs"
	"github.com/CageChen/hideme/internal/hidelist"
	"github.com/CageChen/hideme/internal/settings"
	"github.com/CageChen/hideme/internal/utils"
)

// Folder is a workspace folder and the filesystem used to read it
type Folder struct {
	Path  string
	Alias string
	FS    fs.FileSystem
}

// FoldersFromConfig builds local folders from the configured ones
func FoldersFromConfig(cfg *config.Config) []Folder {
	folders := make([]Folder, len(cfg.Folders))
	for i, f := range cfg.Folders {
		folders[i] = Folder{
			Path:  f.Path,
			Alias: f.Alias,
			FS:    fs.NewLocalFS(f.Path),
		}
	}
	return folders
}

// Result is the exclusion set of one folder
type Result struct {
	Folder Folder
	Set    exclude.Set
}

// Callback is called with the results of every completed sync
type Callback func([]Result)

// Syncer recomputes and writes the exclusion sets. Recomputes never overlap.
type Syncer struct {
	mu         sync.Mutex
	folders    []Folder
	store      settings.Store
	mode       exclude.Mode
	ignoreFile string
	log        utils.Logger

	cbMu      sync.RWMutex
	callbacks []Callback
}

// New creates a Syncer for folders writing to store
func New(folders []Folder, store settings.Store, opts ...Option) *Syncer {
	s := &Syncer{
		folders:    folders,
		store:      store,
		mode:       exclude.ModePattern,
		ignoreFile: hidelist.DefaultFileName,
		log:        utils.NoopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Folders returns the workspace folders
func (s *Syncer) Folders() []Folder {
	return s.folders
}

// Root returns the workspace root, the first folder
func (s *Syncer) Root() (Folder, bool) {
	if len(s.folders) == 0 {
		return Folder{}, false
	}
	return s.folders[0], true
}

// IgnoreFile returns the ignore file name
func (s *Syncer) IgnoreFile() string {
	return s.ignoreFile
}

// OnSync registers a callback for completed syncs
func (s *Syncer) OnSync(cb Callback) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.callbacks = append(s.callbacks, cb)
}

// Sync reads the ignore file from the workspace root and overwrites the
// exclusions of every folder. With no folders it does nothing. A malformed
// entry aborts before any folder is written; per-folder failures are joined
// and the remaining folders are still written. Callbacks run after the
// recompute lock is released.
func (s *Syncer) Sync() ([]Result, error) {
	results, ran, err := s.recompute()
	if ran {
		s.notify(results)
	}
	return results, err
}

func (s *Syncer) recompute() ([]Result, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, ok := s.Root()
	if !ok {
		return nil, false, nil
	}

	entries := hidelist.Read(root.FS, s.ignoreFile, s.log)
	rules, err := exclude.Compile(s.mode, entries)
	if err != nil {
		return nil, false, fmt.Errorf("compile %s: %w", s.ignoreFile, err)
	}

	var errs []error
	results := make([]Result, 0, len(s.folders))
	for _, folder := range s.folders {
		set, err := rules.Apply(folder.FS)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", folder.Alias, err))
			continue
		}
		if err := s.store.Write(folder.Path, set); err != nil {
			errs = append(errs, fmt.Errorf("%s: write settings: %w", folder.Alias, err))
			continue
		}
		s.log.Info("%s: hiding %d entr(ies)", folder.Alias, len(set))
		s.log.Debug("%s: %v", folder.Alias, set.Names())
		results = append(results, Result{Folder: folder, Set: set})
	}

	return results, true, errors.Join(errs...)
}

// HandleChange re-syncs when path names an ignore file. Errors are logged.
func (s *Syncer) HandleChange(path string) {
	if !hidelist.IsIgnoreFile(path, s.ignoreFile) {
		return
	}
	s.log.Debug("Ignore file changed: %s", path)
	if _, err := s.Sync(); err != nil {
		s.log.Error("Sync failed: %v", err)
	}
}

// Current reads back the exclusions stored for every folder
func (s *Syncer) Current() ([]Result, error) {
	var errs []error
	results := make([]Result, 0, len(s.folders))
	for _, folder := range s.folders {
		set, err := s.store.Read(folder.Path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: read settings: %w", folder.Alias, err))
			continue
		}
		results = append(results, Result{Folder: folder, Set: set})
	}
	return results, errors.Join(errs...)
}

func (s *Syncer) notify(results []Result) {
	s.cbMu.RLock()
	callbacks := make([]Callback, len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.cbMu.RUnlock()

	for _, cb := range callbacks {
		cb(results)
	}
}
