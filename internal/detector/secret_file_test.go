package detector

import (
	"strings"
	"testing"

	"github.com/gzhole/hookguard/internal/request"
)

func TestSecretFileWrite_FileTools(t *testing.T) {
	d := NewSecretFileWrite()

	tests := []struct {
		tool    string
		path    string
		blocked bool
	}{
		{"Write", "config/.env", true},
		{"Write", ".env", true},
		{"Edit", "/srv/app/.env.local", true},
		{"MultiEdit", "apps/web/.ENV.production", true},
		{"Write", "config/.env.example", false},
		{"Write", ".env.sample", false},
		{"Edit", ".env.template", false},
		{"Write", ".env.dist", false},
		{"Write", "config/settings.yaml", false},
		{"Read", "config/.env", false},
		{"Read", ".env.local", false},
	}

	for _, tt := range tests {
		f := detect(t, d, fileInput(tt.tool, tt.path))
		if (f != nil) != tt.blocked {
			t.Errorf("%s %q: expected blocked=%v, got %+v", tt.tool, tt.path, tt.blocked, f)
			continue
		}
		if f == nil {
			continue
		}
		if f.RuleID != "env-file-write" {
			t.Errorf("%s %q: expected env-file-write, got %s", tt.tool, tt.path, f.RuleID)
		}
		if !strings.HasPrefix(f.Reason, "Writing to .env files is blocked") {
			t.Errorf("%s %q: unexpected reason %q", tt.tool, tt.path, f.Reason)
		}
		if f.Hint == "" {
			t.Errorf("%s %q: expected a remediation hint", tt.tool, tt.path)
		}
	}
}

func TestSecretFileWrite_NotebookPath(t *testing.T) {
	d := NewSecretFileWrite()
	in := NewInput(request.ToolRequest{
		ToolName:  "NotebookEdit",
		ToolInput: map[string]any{"notebook_path": "nb/.env"},
	})
	if f := detect(t, d, in); f == nil {
		t.Error("expected NotebookEdit of a .env path to be blocked")
	}
}

func TestSecretFileWrite_ShellCommands(t *testing.T) {
	d := NewSecretFileWrite()

	tests := []struct {
		command string
		ruleID  string
	}{
		{"echo SECRET=1 > .env", "env-redirect"},
		{"echo TOKEN=abc >> config/.env.local", "env-redirect"},
		{`printf 'A=1' > ".env"`, "env-redirect"},
		{"cp .env.example .env", "env-copy-move"},
		{"mv /tmp/creds .env.production", "env-copy-move"},
		{"rm .env", "env-delete"},
		{"touch .env", "env-touch"},
		{"echo A=1 | tee -a .env", "env-tee"},
		{"sed -i 's/a/b/' .env", "env-sed-in-place"},
		{"Set-Content -Path .env -Value 'A=1'", "env-powershell-write"},
		{"cd app\necho KEY=1 > .env", "env-redirect"},
	}

	for _, tt := range tests {
		f := detect(t, d, bashInput(tt.command))
		if f == nil {
			t.Errorf("command %q: expected block, got allow", tt.command)
			continue
		}
		if f.RuleID != tt.ruleID {
			t.Errorf("command %q: expected rule %s, got %s", tt.command, tt.ruleID, f.RuleID)
		}
	}
}

func TestSecretFileWrite_ShellTemplatesAndReadsAllowed(t *testing.T) {
	d := NewSecretFileWrite()

	tests := []string{
		"cat .env",
		"grep API_KEY .env",
		"echo A=1 > .env.example",
		"cp .env.example .env.sample",
		"touch .env.template",
		"echo done > out.log && cat .env",
		"git add .env.dist",
		"rm -rf dist\nsource .env",
		"rm build.log\ncat .env",
	}

	for _, cmd := range tests {
		if f := detect(t, d, bashInput(cmd)); f != nil {
			t.Errorf("command %q: expected allow, got block (%s)", cmd, f.RuleID)
		}
	}
}

func TestIsSecretPath(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".env", true},
		{"a/b/.env.local", true},
		{".ENV", true},
		{".env.example", false},
		{".env.EXAMPLE", false},
		{"README.md", false},
	}
	for _, tt := range tests {
		if got := IsSecretPath(tt.path); got != tt.expected {
			t.Errorf("IsSecretPath(%q): expected %v, got %v", tt.path, tt.expected, got)
		}
	}
}
