package lint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/plint/internal/fixer"
	"github.com/gnolang/plint/internal/lints"
	tt "github.com/gnolang/plint/internal/types"
)

// DefaultConfigName is the file written by `plint init` and looked up
// when no configuration path is given.
const DefaultConfigName = ".plint.yaml"

var configNames = []string{DefaultConfigName, ".plint.yml", "pyproject.toml"}

// ErrNoToolTable is returned for a pyproject.toml without [tool.plint].
var ErrNoToolTable = errors.New("no [tool.plint] table")

// Config represents the overall configuration with a name and a slice of rules.
type Config struct {
	Name           string                   `yaml:"name" toml:"name"`
	Rules          map[string]tt.ConfigRule `yaml:"rules" toml:"rules"`
	Select         []string                 `yaml:"select" toml:"select"`
	Ignore         []string                 `yaml:"ignore" toml:"ignore"`
	PerFileIgnores map[string][]string      `yaml:"per-file-ignores" toml:"per-file-ignores"`
	Exclude        []string                 `yaml:"exclude" toml:"exclude"`
	Fix            tt.FixMode               `yaml:"fix" toml:"fix"`
	FixPreference  tt.FixPreference         `yaml:"fix-preference" toml:"fix-preference"`
	MaxIterations  int                      `yaml:"max-iterations" toml:"max-iterations"`
	CacheDir       string                   `yaml:"cache-dir" toml:"cache-dir"`
	// CacheMaxAge bounds the age of reused cache entries; zero keeps them
	// until the file or the rule set changes.
	CacheMaxAge time.Duration `yaml:"cache-max-age" toml:"cache-max-age"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	return Config{
		Name:          "plint",
		Exclude:       []string{".git", ".venv", "venv", "__pycache__", "build", "dist"},
		MaxIterations: fixer.DefaultMaxIterations,
	}
}

// LoadConfig reads a yaml configuration, or the [tool.plint] table of a
// pyproject.toml. Unset fields keep their defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if filepath.Ext(path) == ".toml" {
		var doc struct {
			Tool struct {
				Plint *Config `toml:"plint"`
			} `toml:"tool"`
		}
		doc.Tool.Plint = &config
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return config, fmt.Errorf("parsing %s: %w", path, err)
		}
		if !md.IsDefined("tool", "plint") {
			return config, fmt.Errorf("%s: %w", path, ErrNoToolTable)
		}
		return config, nil
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parsing %s: %w", path, err)
	}
	return config, nil
}

// FindConfig looks for a configuration file in dir and its parents. A
// pyproject.toml only counts when it has a [tool.plint] table.
func FindConfig(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if name == "pyproject.toml" {
				if _, err := LoadConfig(path); err != nil {
					continue
				}
			}
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// WriteConfig writes config as yaml to path.
func WriteConfig(path string, config Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

type fileIgnore struct {
	pattern glob.Glob
	codes   []string
}

// Settings is a configuration compiled against a rule registry.
type Settings struct {
	registry *lints.Registry
	base     tt.RuleSet
	perFile  []fileIgnore
	exclude  []glob.Glob
	config   Config
}

// Compile resolves the rule selection and the glob patterns of config.
func (c Config) Compile(registry *lints.Registry) (*Settings, error) {
	s := &Settings{
		registry: registry,
		base:     registry.RuleSet(c.Select, c.Ignore, c.Rules),
		config:   c,
	}

	patterns := make([]string, 0, len(c.PerFileIgnores))
	for pattern := range c.PerFileIgnores {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)
	for _, pattern := range patterns {
		g, err := compileGlob(pattern)
		if err != nil {
			return nil, err
		}
		s.perFile = append(s.perFile, fileIgnore{pattern: g, codes: c.PerFileIgnores[pattern]})
	}

	for _, pattern := range c.Exclude {
		g, err := compileGlob(pattern)
		if err != nil {
			return nil, err
		}
		s.exclude = append(s.exclude, g)
	}
	return s, nil
}

func compileGlob(pattern string) (glob.Glob, error) {
	g, err := glob.Compile(filepath.ToSlash(pattern), '/')
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return g, nil
}

// matchPath matches a pattern against the whole slash path, its base name
// and every trailing subpath, so "tests/*.py" matches "src/tests/a.py".
func matchPath(g glob.Glob, path string) bool {
	path = strings.TrimPrefix(filepath.ToSlash(filepath.Clean(path)), "./")
	if g.Match(path) {
		return true
	}
	for i := 0; i < len(path); i++ {
		if path[i] == '/' && g.Match(path[i+1:]) {
			return true
		}
	}
	return false
}

// RuleSetFor returns the active rule set for path: the selected rules
// minus the per-file ignores matching it.
func (s *Settings) RuleSetFor(path string) tt.RuleSet {
	var ignored []string
	for _, fi := range s.perFile {
		if matchPath(fi.pattern, path) {
			ignored = append(ignored, fi.codes...)
		}
	}
	return s.registry.Without(s.base, ignored)
}

// Excluded reports whether path, a file or a directory, matches an
// exclude pattern.
func (s *Settings) Excluded(path string) bool {
	for _, g := range s.exclude {
		if matchPath(g, path) {
			return true
		}
	}
	return false
}

// FixOptions returns the resolver options for mode, with the per-rule
// preferences of the configuration.
func (s *Settings) FixOptions(mode tt.FixMode) (fixer.Options, error) {
	opts := fixer.Options{Mode: mode, Preference: s.config.FixPreference}
	for key, rule := range s.config.Rules {
		if rule.Prefer == "" {
			continue
		}
		var p tt.FixPreference
		if err := p.UnmarshalText([]byte(rule.Prefer)); err != nil {
			return opts, fmt.Errorf("rule %s: %w", key, err)
		}
		if opts.Prefer == nil {
			opts.Prefer = make(map[string]tt.FixPreference)
		}
		opts.Prefer[s.registry.Redirect(key)] = p
	}
	return opts, nil
}

// Unknown lists the selectors and rule keys of the configuration that
// match no rule.
func (s *Settings) Unknown() []string {
	keys := append(append([]string(nil), s.config.Select...), s.config.Ignore...)
	for _, codes := range s.config.PerFileIgnores {
		keys = append(keys, codes...)
	}
	unknown := s.registry.Unknown(keys)
	for key := range s.config.Rules {
		if !s.registry.Known(s.registry.Redirect(key)) {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func (s *Settings) Config() Config { return s.config }
