package detector

const runtimeTokenPattern = `\b(?:docker|podman)\b`

var runtimeToken = mustCompileRules([]Rule{{ID: "container-runtime", Pattern: runtimeTokenPattern}})[0]

var containerRules = mustCompileRules([]Rule{
	{ID: "privileged", Pattern: `--privileged(?:=true)?(?=$|[\s;&|])`,
		Reason: "Privileged container mode detected"},
	{ID: "host-root-volume", Pattern: `\s(?:-v|--volume)(?:\s+|=)["']?(?:/|[a-z]:\\?):`,
		Reason: "Mounting the host root filesystem into a container is blocked"},
	{ID: "host-root-mount", Pattern: `\s--mount(?:\s+|=)["']?[^\s]*\b(?:source|src)=/(?=$|[,\s"'])`,
		Reason: "Mounting the host root filesystem into a container is blocked"},
	{ID: "host-pid", Pattern: `--pid(?:\s+|=)["']?host\b`,
		Reason: "Sharing the host process namespace is blocked"},
	{ID: "host-network", Pattern: `--net(?:work)?(?:\s+|=)["']?host\b`,
		Reason: "Sharing the host network namespace is blocked"},
	{ID: "system-prune-all", Pattern: `\bsystem\s+prune\b(?![^;&|]*--filter)(?=[^;&|]*\s(?:-[a-z]*a[a-z]*|--all)(?=$|[\s;&|]))`,
		Reason: "Unscoped full-system prune is blocked"},
})

// ContainerEscape looks for container runtime invocations that break
// isolation from the host. Commands that never mention a runtime are not
// applicable.
type ContainerEscape struct {
	rules []compiledRule
}

func NewContainerEscape() *ContainerEscape {
	return &ContainerEscape{rules: containerRules}
}

func (d *ContainerEscape) Category() Category { return CategoryContainerEscape }

func (d *ContainerEscape) Applicable(in *Input) bool {
	if !in.Shell() {
		return false
	}
	ok, err := runtimeToken.match(in.Command)
	// A matcher failure is re-raised by Detect on the full table.
	return ok || err != nil
}

func (d *ContainerEscape) Detect(in *Input) (*Finding, error) {
	r, err := firstLineMatch(d.rules, in.Lines)
	if err != nil || r == nil {
		return nil, err
	}
	return &Finding{
		Category: CategoryContainerEscape,
		RuleID:   r.ID,
		Platform: r.Platform,
		Reason:   r.Reason,
	}, nil
}
