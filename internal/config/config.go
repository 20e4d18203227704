package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gzhole/hookguard/internal/detector"
	"github.com/gzhole/hookguard/internal/policy"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = ".hookguard"
	DefaultConfigFile = "config.yaml"
	DefaultLogFile    = "audit.json"
	DefaultPacksDir   = "packs"
)

// FailPolicy decides what happens when a request cannot be evaluated:
// malformed input, a matcher timeout or a panic.
type FailPolicy string

const (
	FailOpen   FailPolicy = "open"
	FailClosed FailPolicy = "closed"
)

// DefaultFailPolicy is the single switch for unevaluable requests. A guard
// that cannot decide denies.
const DefaultFailPolicy = FailClosed

func ParseFailPolicy(s string) (FailPolicy, error) {
	switch FailPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultFailPolicy, nil
	case FailOpen:
		return FailOpen, nil
	case FailClosed:
		return FailClosed, nil
	}
	return DefaultFailPolicy, fmt.Errorf("invalid fail_policy %q (want open or closed)", s)
}

type Config struct {
	ConfigDir  string
	ConfigPath string
	LogPath    string
	PacksDir   string
	FailPolicy FailPolicy
	LogLevel   zapcore.Level
	ExtraRules []detector.Rule
}

type fileConfig struct {
	FailPolicy string            `yaml:"fail_policy"`
	LogLevel   string            `yaml:"log_level"`
	AuditLog   string            `yaml:"audit_log"`
	PacksDir   string            `yaml:"packs_dir"`
	ExtraRules []policy.RuleSpec `yaml:"extra_rules"`
}

// Default returns the configuration used when no file exists.
func Default() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("locate home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, DefaultConfigDir)
	return &Config{
		ConfigDir:  configDir,
		ConfigPath: filepath.Join(configDir, DefaultConfigFile),
		LogPath:    filepath.Join(configDir, DefaultLogFile),
		PacksDir:   filepath.Join(configDir, DefaultPacksDir),
		FailPolicy: DefaultFailPolicy,
		LogLevel:   zapcore.WarnLevel,
	}, nil
}

// Load reads the YAML config at path, or the default location when path is
// empty. A missing file yields the defaults. Nothing is created on disk.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		cfg.ConfigPath = expandHome(path)
	}

	data, err := os.ReadFile(cfg.ConfigPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", cfg.ConfigPath, err)
	}
	if err := cfg.apply(fc); err != nil {
		return nil, fmt.Errorf("config %s: %w", cfg.ConfigPath, err)
	}
	return cfg, nil
}

func (c *Config) apply(fc fileConfig) error {
	fp, err := ParseFailPolicy(fc.FailPolicy)
	if err != nil {
		return err
	}
	c.FailPolicy = fp

	if fc.LogLevel != "" {
		lvl, err := zapcore.ParseLevel(fc.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log_level: %w", err)
		}
		c.LogLevel = lvl
	}

	if fc.AuditLog != "" {
		c.LogPath = expandHome(fc.AuditLog)
	}
	if fc.PacksDir != "" {
		c.PacksDir = expandHome(fc.PacksDir)
	}

	rules, err := policy.Rules(fc.ExtraRules)
	if err != nil {
		return fmt.Errorf("extra_rules: %w", err)
	}
	c.ExtraRules = rules
	return nil
}

// Rules returns the configured extra rules followed by those of enabled rule
// packs.
func (c *Config) Rules() ([]detector.Rule, []policy.PackInfo, error) {
	packRules, infos, err := policy.LoadPacks(c.PacksDir)
	if err != nil {
		return nil, nil, fmt.Errorf("load packs: %w", err)
	}
	rules := make([]detector.Rule, 0, len(c.ExtraRules)+len(packRules))
	rules = append(rules, c.ExtraRules...)
	return append(rules, packRules...), infos, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
