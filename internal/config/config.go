// Package config manages YAML-based configuration, CLI flags, and workspace folders.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/CageChen/hideme/internal/exclude"
	"github.com/CageChen/hideme/internal/hidelist"
	"github.com/CageChen/hideme/internal/settings"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// Folder is a workspace folder with an alias for display
type Folder struct {
	Path  string `yaml:"path" json:"path"`
	Alias string `yaml:"alias,omitempty" json:"alias"`
}

// Config holds all configuration options for hideme
type Config struct {
	// Single workspace path, used when Folders is empty
	Path string `yaml:"path,omitempty"`

	// Workspace folders; the first one is the workspace root
	Folders []Folder `yaml:"folders,omitempty" json:"folders"`

	Mode         string `yaml:"mode"`
	IgnoreFile   string `yaml:"ignore_file"`
	SettingsFile string `yaml:"settings_file"`
	SettingsKey  string `yaml:"settings_key"`
	Watch        bool   `yaml:"watch"`
	Port         int    `yaml:"port"`
	LogLevel     string `yaml:"log_level"`
	NoColor      bool   `yaml:"no_color"`

	// Command line only
	Once      bool `yaml:"-"`
	Status    bool `yaml:"-"`
	UseColors bool `yaml:"-"`

	// Internal: path of the loaded config file
	configPath string
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Path:         ".",
		Mode:         string(exclude.ModePattern),
		IgnoreFile:   hidelist.DefaultFileName,
		SettingsFile: settings.DefaultFile,
		SettingsKey:  settings.DefaultKey,
		Watch:        true,
		Port:         0,
		LogLevel:     "info",
	}
}

// GetConfigDir returns the config directory path
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/hideme"
	}
	return filepath.Join(home, ".config", "hideme")
}

// GetConfigPath returns the full path to the global config file
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Load builds the configuration from the config file and the given command
// line arguments (without the program name).
func Load(args []string) (*Config, error) {
	cfg := DefaultConfig()

	fs := flag.NewFlagSet("hideme", flag.ContinueOnError)
	path := fs.String("path", "", "Workspace folder (overrides configured folders)")
	mode := fs.String("mode", "", "How .hideme entries are read: pattern, literal or gitignore")
	watch := fs.Bool("watch", true, "Re-sync whenever the ignore file changes")
	once := fs.Bool("once", false, "Sync once and exit")
	status := fs.Bool("status", false, "Print current exclusions and exit")
	port := fs.Int("port", 0, "Status API port (0 disables the server)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error, none)")
	noColor := fs.Bool("no-color", false, "Disable color output")
	configFile := fs.String("config", "", "Configuration file path")

	fs.StringVar(path, "p", "", "Workspace folder (shorthand)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var cfgPath string
	if *configFile != "" {
		cfgPath = *configFile
	} else {
		globalConfig := GetConfigPath()
		if _, err := os.Stat(globalConfig); err == nil {
			cfgPath = globalConfig
		} else if _, err := os.Stat("hideme.yaml"); err == nil {
			cfgPath = "hideme.yaml"
		}
	}

	if cfgPath != "" {
		if err := cfg.loadFromFile(cfgPath); err != nil {
			return nil, err
		}
		cfg.configPath = cfgPath
	}

	// Command line flags override the config file
	if *path != "" || fs.NArg() > 0 {
		// CLI folders replace the configured ones
		cfg.Folders = nil
		if *path != "" {
			cfg.Folders = append(cfg.Folders, Folder{Path: *path})
		}
		for _, extra := range fs.Args() {
			cfg.Folders = append(cfg.Folders, Folder{Path: extra})
		}
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if set["watch"] {
		cfg.Watch = *watch
	}
	if set["port"] {
		cfg.Port = *port
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if set["no-color"] {
		cfg.NoColor = *noColor
	}
	cfg.Once = *once
	cfg.Status = *status

	if _, err := exclude.ParseMode(cfg.Mode); err != nil {
		return nil, err
	}

	cfg.resolveFolders()
	cfg.UseColors = !cfg.NoColor && isatty.IsTerminal(os.Stderr.Fd())

	return cfg, nil
}

// resolveFolders uses Path when no folders are configured and makes every
// folder path absolute
func (c *Config) resolveFolders() {
	if len(c.Folders) == 0 && c.Path != "" {
		c.Folders = []Folder{{Path: c.Path}}
	}

	for i := range c.Folders {
		absPath, err := filepath.Abs(c.Folders[i].Path)
		if err == nil {
			c.Folders[i].Path = absPath
		}
		if c.Folders[i].Alias == "" {
			c.Folders[i].Alias = filepath.Base(c.Folders[i].Path)
		}
	}
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ExcludeMode returns the parsed Mode
func (c *Config) ExcludeMode() exclude.Mode {
	m, err := exclude.ParseMode(c.Mode)
	if err != nil {
		return exclude.ModePattern
	}
	return m
}

// GetConfigFilePath returns the path to the loaded config file, if any
func (c *Config) GetConfigFilePath() string {
	return c.configPath
}
