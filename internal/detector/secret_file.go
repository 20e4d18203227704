package detector

import "strings"

const (
	secretReason = "Writing to .env files is blocked (contains sensitive data)"
	secretHint   = "Use .env.example, .env.sample, .env.template or .env.dist for template files instead"
	secretMarker = ".env"
)

// templateSuffixes mark committed example files that are safe to write.
var templateSuffixes = []string{".sample", ".example", ".template", ".dist"}

// envTarget matches a path word containing ".env". The lookahead sits at the
// ".env" match site and rejects the word when it ends in a template suffix,
// so "cp .env.example .env" still matches on its second word.
const envTarget = `["']?[^\s"'<>|;&]*\.env(?![\w.-]*\.(?:sample|example|template|dist)(?![\w.-]))[\w.-]*`

var secretShellRules = mustCompileRules([]Rule{
	{ID: "env-redirect", Pattern: `>\s*` + envTarget, Platform: PlatformAny},
	{
		ID:       "env-copy-move",
		Pattern:  `\b(?:cp|mv|copy|move|xcopy|robocopy|install|rsync|ln|copy-item|move-item|cpi|mi)\b[^;&|]*\s` + envTarget + `["']?\s*(?=$|[;&|])`,
		Platform: PlatformAny,
	},
	{ID: "env-delete", Pattern: `\b(?:rm|del|erase|unlink|shred|remove-item|ri)\b[^;&|]*\s` + envTarget, Platform: PlatformAny},
	{ID: "env-touch", Pattern: `\b(?:touch|new-item|ni)\b[^;&|]*\s` + envTarget, Platform: PlatformAny},
	{ID: "env-tee", Pattern: `\btee\b[^;&|]*\s` + envTarget, Platform: PlatformPOSIX},
	{ID: "env-sed-in-place", Pattern: `\bsed\b[^;&|]*\s-[a-z]*i[^;&|]*\s` + envTarget, Platform: PlatformPOSIX},
	{
		ID:       "env-powershell-write",
		Pattern:  `\b(?:set-content|add-content|clear-content|out-file)\b[^;|]*\s` + envTarget,
		Platform: PlatformWindows,
	},
})

// SecretFileWrite keeps agents from creating or changing .env files. It
// judges file tools by their target path and shell tools by their command;
// reads are never blocked.
type SecretFileWrite struct {
	shellRules []compiledRule
}

func NewSecretFileWrite() *SecretFileWrite {
	return &SecretFileWrite{shellRules: secretShellRules}
}

func (d *SecretFileWrite) Category() Category { return CategorySecretFileWrite }

func (d *SecretFileWrite) Applicable(in *Input) bool {
	return in.FileWrite() || in.Shell()
}

func (d *SecretFileWrite) Detect(in *Input) (*Finding, error) {
	if in.FileWrite() && IsSecretPath(in.FilePath) {
		return &Finding{
			Category: CategorySecretFileWrite,
			RuleID:   "env-file-write",
			Platform: PlatformAny,
			Reason:   secretReason,
			Hint:     secretHint,
		}, nil
	}

	if !in.Shell() {
		return nil, nil
	}
	r, err := firstLineMatch(d.shellRules, in.Lines)
	if err != nil || r == nil {
		return nil, err
	}
	return &Finding{
		Category: CategorySecretFileWrite,
		RuleID:   r.ID,
		Platform: r.Platform,
		Reason:   secretReason,
		Hint:     secretHint,
	}, nil
}

// IsSecretPath reports whether writing path would touch a .env file that is
// not a template.
func IsSecretPath(path string) bool {
	p := strings.ToLower(path)
	if !strings.Contains(p, secretMarker) {
		return false
	}
	for _, suffix := range templateSuffixes {
		if strings.HasSuffix(p, suffix) {
			return false
		}
	}
	return true
}
