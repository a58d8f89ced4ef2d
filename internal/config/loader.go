package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the per-project configuration file name. It lives
// next to the crawl it configures, like .gitignore does.
const DefaultConfigFile = ".spiderkit"

// XDGConfigFileName is the file name used inside the XDG config
// directory, where a hidden dotfile would be pointless.
const XDGConfigFileName = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads crawl defaults and per-site sections (cookies,
// headers, depth, request rates, URL patterns) from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound; the caller
// decides whether that is fatal, since an implicit config file is
// optional but an explicitly named one is not.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	// Site sections are keyed by registrable domain, and hostnames are
	// case-insensitive. Lowercase the keys once here so lookups never miss
	// on a Shop.Example entry.
	sites := make(map[string]SiteConfig, len(cf.Sites))
	for domain, sc := range cf.Sites {
		sites[strings.ToLower(domain)] = sc
	}
	cf.Sites = sites

	return &cf, nil
}

// FindConfigFile resolves which configuration file a run should use.
// An explicit path wins outright; otherwise the implicit locations from
// configSearchPaths are tried in order. Returns "" when nothing exists.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	for _, candidate := range configSearchPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// configSearchPaths lists the implicit config locations in precedence
// order: the working directory for per-project crawl setups, the XDG
// config directory, then a home-directory dotfile as the user-wide
// fallback.
func configSearchPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, DefaultConfigFile))
	}
	paths = append(paths, filepath.Join(XDGConfigDir(), XDGConfigFileName))
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, DefaultConfigFile))
	}
	return paths
}
