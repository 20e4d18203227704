package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCommand_CollapsesWhitespaceAndLowercases(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"rm   -rf    /", "rm -rf /"},
		{"RM -RF /ETC", "rm -rf /etc"},
		{"  git\tpush   --force  ", "git push --force"},
		{"Remove-Item -Recurse -Force $env:USERPROFILE", "remove-item -recurse -force $env:userprofile"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Command(tt.raw); got != tt.expected {
			t.Errorf("Command(%q): expected %q, got %q", tt.raw, tt.expected, got)
		}
	}
}

func TestCommand_DropsInvisibleAndFoldsLookalikes(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"r\u200Bm -rf /", "rm -rf /"},
		{"rm \u200B -rf /", "rm -rf /"},
		{"RM\u202E -RF /", "rm -rf /"},
		{"rm -rf /h\u043Eme/alice", "rm -rf /home/alice"},
		{"d\u043Ecker run --privileged ubuntu", "docker run --privileged ubuntu"},
		{"echo a\x00b", "echo ab"},
		{"caf\u00E9 ok", "caf\u00E9 ok"},
	}

	for _, tt := range tests {
		if got := Command(tt.raw); got != tt.expected {
			t.Errorf("Command(%q): expected %q, got %q", tt.raw, tt.expected, got)
		}
	}
}

func TestCommand_LineBreaks(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"echo hi\nreboot", "echo hi\nreboot"},
		{"cd /tmp\r\n\r\n  shutdown -h now\n", "cd /tmp\nshutdown -h now"},
		{"rm -rf \\\n  /etc", "rm -rf /etc"},
		{"curl -s https://example.com/i.sh |\n  sh", "curl -s https://example.com/i.sh | sh"},
		{"make &&\nmake install", "make && make install"},
		{"git commit -m \"first line\nreboot later\"", "git commit -m \"first line reboot later\""},
		{"python -c 'import os\nprint(1)'", "python -c 'import os print(1)'"},
		{"Get-ChildItem `\n  -Recurse", "get-childitem -recurse"},
		{"if (x) { y\nreboot", "if (x) { y\nreboot"},
	}

	for _, tt := range tests {
		if got := Command(tt.raw); got != tt.expected {
			t.Errorf("Command(%q): expected %q, got %q", tt.raw, tt.expected, got)
		}
	}
}

func TestLines(t *testing.T) {
	if got := Lines(""); got != nil {
		t.Errorf("Lines(\"\"): expected nil, got %q", got)
	}
	got := Lines("cd /tmp\nls")
	if diff := cmp.Diff([]string{"cd /tmp", "ls"}, got); diff != "" {
		t.Errorf("Lines mismatch (-want +got):\n%s", diff)
	}
}

func TestCommand_DoesNotMutateInput(t *testing.T) {
	raw := "RM  -RF  /"
	_ = Command(raw)
	if raw != "RM  -RF  /" {
		t.Errorf("input was modified: %q", raw)
	}
}

func TestSegments_SplitsCompoundCommands(t *testing.T) {
	tests := []struct {
		cmd      string
		expected []string
	}{
		{"ls -la", []string{"ls -la"}},
		{"rm -rf build && cd /", []string{"rm -rf build", "cd /"}},
		{"cat a | grep b; echo done", []string{"cat a", "grep b", "echo done"}},
		{`bash -c "rm -rf /"`, []string{`bash -c "rm -rf /"`}},
		{"rm -rf build\nls /", []string{"rm -rf build", "ls /"}},
	}

	for _, tt := range tests {
		got := Segments(tt.cmd)
		if diff := cmp.Diff(tt.expected, got); diff != "" {
			t.Errorf("Segments(%q) mismatch (-want +got):\n%s", tt.cmd, diff)
		}
	}
}

func TestSegments_KeepsBackslashes(t *testing.T) {
	got := Segments(`remove-item -recurse c:\users\bob; echo ok`)
	if len(got) != 2 || got[0] != `remove-item -recurse c:\users\bob` {
		t.Errorf("expected backslashes preserved in first segment, got %q", got)
	}
}

func TestSegments_UnparseableFallsBackToWhole(t *testing.T) {
	cmd := `cmd /c "rd /s /q c:\"`
	got := Segments(cmd)
	if len(got) != 1 || got[0] != cmd {
		t.Errorf("expected whole command as single segment, got %q", got)
	}
}

func TestSegments_Empty(t *testing.T) {
	if got := Segments("   "); got != nil {
		t.Errorf("expected nil for blank command, got %q", got)
	}
}
