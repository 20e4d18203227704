package detector

import "testing"

func TestContainerEscape_Blocks(t *testing.T) {
	d := NewContainerEscape()

	tests := []struct {
		command string
		ruleID  string
	}{
		{"docker run --privileged ubuntu", "privileged"},
		{"podman run --privileged=true fedora", "privileged"},
		{"docker run -v /:/host ubuntu", "host-root-volume"},
		{"docker run --volume=/:/mnt alpine", "host-root-volume"},
		{"docker run --mount type=bind,source=/,target=/host alpine", "host-root-mount"},
		{"docker run --pid=host alpine", "host-pid"},
		{"docker run --pid host alpine", "host-pid"},
		{"podman run --network host nginx", "host-network"},
		{"docker run --net=host nginx", "host-network"},
		{"docker system prune -af", "system-prune-all"},
		{"docker system prune --all --volumes", "system-prune-all"},
		{"sudo DOCKER run --PRIVILEGED ubuntu", "privileged"},
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
		if f.Category != CategoryContainerEscape {
			t.Errorf("command %q: expected %s, got %s", tt.command, CategoryContainerEscape, f.Category)
		}
	}
}

func TestContainerEscape_Allows(t *testing.T) {
	d := NewContainerEscape()

	tests := []string{
		"docker run ubuntu",
		"docker run -v /data:/data ubuntu",
		"docker run -v $(pwd):/src golang:1.23",
		"docker run --network bridge nginx",
		"docker system prune",
		"docker system prune -f",
		"docker system prune -a --filter until=24h",
		"podman ps",
	}

	for _, cmd := range tests {
		if f := detect(t, d, bashInput(cmd)); f != nil {
			t.Errorf("command %q: expected allow, got block (%s)", cmd, f.RuleID)
		}
	}
}

func TestContainerEscape_RequiresRuntimeToken(t *testing.T) {
	d := NewContainerEscape()

	tests := []string{
		"echo privileged",
		"run --privileged ubuntu",
		"grep -r -- --net=host docs/",
		"dockerize --privileged",
	}

	for _, cmd := range tests {
		in := bashInput(cmd)
		if d.Applicable(in) {
			t.Errorf("command %q: expected category not to apply", cmd)
		}
	}

	if !d.Applicable(bashInput("docker ps")) {
		t.Error("expected docker command to be applicable")
	}
	if d.Applicable(fileInput("Write", "docker-compose.yml")) {
		t.Error("expected file tools to be skipped")
	}
}
