package repo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds sectioned key/value settings (user.name, ai.model, ...).
// All values are kept as strings; callers interpret them.
type Config map[string]map[string]string

// GlobalConfigFileName is the per-user config in the home directory.
const GlobalConfigFileName = ".strataconfig.toml"

// DefaultConfig returns the settings written at init time.
func DefaultConfig() Config {
	return Config{
		"user": {
			"name":  "Strata User",
			"email": "strata@localhost",
		},
		"ai": {
			"model": "gemini-1.5-flash",
		},
		"security": {
			"auditlog": "true",
		},
	}
}

// Get looks up a dotted key like "user.name". The second return reports
// presence.
func (c Config) Get(key string) (string, bool) {
	section, name, ok := strings.Cut(key, ".")
	if !ok {
		return "", false
	}
	values, ok := c[section]
	if !ok {
		return "", false
	}
	v, ok := values[name]
	return v, ok
}

// Set stores a dotted key like "user.name".
func (c Config) Set(key, value string) error {
	section, name, ok := strings.Cut(key, ".")
	if !ok || section == "" || name == "" {
		return fmt.Errorf("%w: config key %q must be section.name", ErrValidation, key)
	}
	if c[section] == nil {
		c[section] = make(map[string]string)
	}
	c[section][name] = value
	return nil
}

func (r *Repo) configPath() string {
	return filepath.Join(r.StrataDir, "config.toml")
}

func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("global config: %w", err)
	}
	return filepath.Join(home, GlobalConfigFileName), nil
}

func loadConfigFile(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if cfg == nil {
		cfg = Config{}
	}
	return cfg, nil
}

// LoadConfig reads the repository config from .strata/config.toml. A missing
// file yields an empty config.
func (r *Repo) LoadConfig() (Config, error) {
	return loadConfigFile(r.configPath())
}

// LoadMergedConfig layers the repository config over the global
// ~/.strataconfig.toml: repo values win per key.
func (r *Repo) LoadMergedConfig() (Config, error) {
	merged := Config{}

	if globalPath, err := globalConfigPath(); err == nil {
		global, err := loadConfigFile(globalPath)
		if err != nil {
			return nil, err
		}
		for section, values := range global {
			for k, v := range values {
				_ = merged.Set(section+"."+k, v)
			}
		}
	}

	local, err := r.LoadConfig()
	if err != nil {
		return nil, err
	}
	for section, values := range local {
		for k, v := range values {
			_ = merged.Set(section+"."+k, v)
		}
	}
	return merged, nil
}

// SaveConfig atomically writes the repository config.
func (r *Repo) SaveConfig(cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("save config: encode: %w", err)
	}

	tmp, err := os.CreateTemp(r.StrataDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("save config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save config: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save config: chmod: %w", err)
	}
	if err := os.Rename(tmpName, r.configPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save config: rename: %w", err)
	}
	return nil
}

// SaveGlobalConfig atomically writes ~/.strataconfig.toml.
func SaveGlobalConfig(cfg Config) error {
	path, err := globalConfigPath()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("save global config: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".strataconfig-tmp-*")
	if err != nil {
		return fmt.Errorf("save global config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save global config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save global config: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save global config: rename: %w", err)
	}
	return nil
}

// LoadGlobalConfig reads ~/.strataconfig.toml; missing file yields empty.
func LoadGlobalConfig() (Config, error) {
	path, err := globalConfigPath()
	if err != nil {
		return nil, err
	}
	return loadConfigFile(path)
}

// AuthorIdentity resolves the commit identity from merged config, falling
// back to defaults when unset.
func (r *Repo) AuthorIdentity() (name, email string, err error) {
	cfg, err := r.LoadMergedConfig()
	if err != nil {
		return "", "", err
	}
	defaults := DefaultConfig()
	name, ok := cfg.Get("user.name")
	if !ok || strings.TrimSpace(name) == "" {
		name, _ = defaults.Get("user.name")
	}
	email, ok = cfg.Get("user.email")
	if !ok || strings.TrimSpace(email) == "" {
		email, _ = defaults.Get("user.email")
	}
	return name, email, nil
}
