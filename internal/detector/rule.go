package detector

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single pattern evaluation. Hitting it is an internal
// failure, not a verdict.
const matchTimeout = 100 * time.Millisecond

// Platform is the command surface a rule was written for. Rules of every
// platform are evaluated on every host; agents on one OS routinely drive
// shells of another.
type Platform int

const (
	PlatformAny Platform = iota
	PlatformPOSIX
	PlatformWindows
)

func (p Platform) String() string {
	switch p {
	case PlatformPOSIX:
		return "posix"
	case PlatformWindows:
		return "windows"
	default:
		return "any"
	}
}

// ParsePlatform accepts "posix", "windows", "any" or "".
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return PlatformAny, nil
	case "posix", "unix", "linux", "macos":
		return PlatformPOSIX, nil
	case "windows", "powershell", "cmd":
		return PlatformWindows, nil
	}
	return PlatformAny, fmt.Errorf("unknown platform %q", s)
}

// Rule is one declarative table row. Patterns use .NET-style syntax
// (lookahead and backreferences are available) and match case-insensitively
// against the normalized command.
type Rule struct {
	ID       string
	Pattern  string
	Platform Platform
	Reason   string
}

type compiledRule struct {
	Rule
	re *regexp2.Regexp
}

func compileRule(r Rule) (compiledRule, error) {
	re, err := regexp2.Compile(r.Pattern, regexp2.IgnoreCase)
	if err != nil {
		return compiledRule{}, fmt.Errorf("rule %s: %w", r.ID, err)
	}
	re.MatchTimeout = matchTimeout
	return compiledRule{Rule: r, re: re}, nil
}

// Validate reports whether r's pattern compiles with the options the
// detectors use.
func Validate(r Rule) error {
	_, err := compileRule(r)
	return err
}

func compileRules(rules []Rule) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		c, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func mustCompileRules(rules []Rule) []compiledRule {
	out, err := compileRules(rules)
	if err != nil {
		panic(err)
	}
	return out
}

func (r compiledRule) match(s string) (bool, error) {
	ok, err := r.re.MatchString(s)
	if err != nil {
		return false, fmt.Errorf("rule %s: %w", r.ID, err)
	}
	return ok, nil
}

// firstMatch returns the first rule in table order that matches s, or nil.
func firstMatch(rules []compiledRule, s string) (*compiledRule, error) {
	for i := range rules {
		ok, err := rules[i].match(s)
		if err != nil {
			return nil, err
		}
		if ok {
			return &rules[i], nil
		}
	}
	return nil, nil
}

// firstLineMatch is firstMatch over several lines: the first rule in table
// order that matches any line wins.
func firstLineMatch(rules []compiledRule, lines []string) (*compiledRule, error) {
	for i := range rules {
		for _, line := range lines {
			ok, err := rules[i].match(line)
			if err != nil {
				return nil, err
			}
			if ok {
				return &rules[i], nil
			}
		}
	}
	return nil, nil
}
