package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gzhole/hookguard/internal/detector"
	"gopkg.in/yaml.v3"
)

// RuleSpec is the YAML form of an extra system-destructive rule, used both in
// the config file and in rule packs.
type RuleSpec struct {
	ID       string `yaml:"id"`
	Pattern  string `yaml:"pattern"`
	Platform string `yaml:"platform,omitempty"`
	Reason   string `yaml:"reason"`
}

// Rule validates the spec and converts it to a detector rule. A pattern that
// does not compile is rejected here so that one bad rule never reaches the
// detector build.
func (s RuleSpec) Rule() (detector.Rule, error) {
	if s.ID == "" {
		return detector.Rule{}, fmt.Errorf("rule has no id")
	}
	if s.Pattern == "" {
		return detector.Rule{}, fmt.Errorf("rule %s: empty pattern", s.ID)
	}
	platform, err := detector.ParsePlatform(s.Platform)
	if err != nil {
		return detector.Rule{}, fmt.Errorf("rule %s: %w", s.ID, err)
	}
	reason := s.Reason
	if reason == "" {
		reason = fmt.Sprintf("Blocked by rule %s", s.ID)
	}
	r := detector.Rule{ID: s.ID, Pattern: s.Pattern, Platform: platform, Reason: reason}
	if err := detector.Validate(r); err != nil {
		return detector.Rule{}, err
	}
	return r, nil
}

// Rules converts a list of specs, stopping at the first invalid one.
func Rules(specs []RuleSpec) ([]detector.Rule, error) {
	out := make([]detector.Rule, 0, len(specs))
	for _, s := range specs {
		r, err := s.Rule()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Pack is a YAML file of extra rules dropped into the packs directory.
type Pack struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	PackVersion string     `yaml:"version"`
	Author      string     `yaml:"author"`
	Rules       []RuleSpec `yaml:"rules"`
}

// PackInfo is a summary of a pack for listing.
type PackInfo struct {
	Name        string
	Description string
	Version     string
	Author      string
	Enabled     bool
	Path        string
	RuleCount   int
	Err         error
}

// LoadPacks reads every .yaml file in packsDir and returns the rules of the
// enabled ones in file-name order. A file whose name starts with "_" is
// disabled. A pack that fails to parse or validate is reported in its
// PackInfo and skipped; a missing directory means no packs.
func LoadPacks(packsDir string) ([]detector.Rule, []PackInfo, error) {
	entries, err := os.ReadDir(packsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	var (
		rules []detector.Rule
		infos []PackInfo
	)
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}

		path := filepath.Join(packsDir, entry.Name())
		baseName := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		enabled := !strings.HasPrefix(baseName, "_")

		pack, err := loadPack(path)
		var packRules []detector.Rule
		if err == nil {
			packRules, err = Rules(pack.Rules)
		}
		if err != nil {
			infos = append(infos, PackInfo{Name: baseName, Enabled: enabled, Path: path, Err: err})
			continue
		}

		info := PackInfo{
			Name:        pack.Name,
			Description: pack.Description,
			Version:     pack.PackVersion,
			Author:      pack.Author,
			Enabled:     enabled,
			Path:        path,
			RuleCount:   len(pack.Rules),
		}
		if info.Name == "" {
			info.Name = baseName
		}
		infos = append(infos, info)

		if enabled {
			rules = append(rules, packRules...)
		}
	}

	return rules, infos, nil
}

func loadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse pack %s: %w", path, err)
	}

	return &pack, nil
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
