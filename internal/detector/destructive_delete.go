package detector

const deleteReason = "Dangerous delete command detected and prevented"

// Argument boundaries for dangerous targets: the target is a whole,
// optionally quoted, word.
const (
	argStart = `(?:^|\s)["']?`
	argEnd   = `["']?(?=$|[\s;&|)])`
)

// deleteActions recognize a recursive, forced delete invocation. On their own
// they never block.
var deleteActions = mustCompileRules([]Rule{
	{
		ID:       "rm-combined-flags",
		Pattern:  `\brm\s(?=(?:[^;&|]*\s)?-[a-z]*(?:r[a-z]*f|f[a-z]*r)[a-z]*(?:\s|$))`,
		Platform: PlatformPOSIX,
	},
	{
		ID:       "rm-separated-flags",
		Pattern:  `\brm\s(?=(?:[^;&|]*\s)?(?:-[a-z]*r[a-z]*|--recursive)(?:\s|$))(?=(?:[^;&|]*\s)?(?:-[a-z]*f[a-z]*|--force)(?:\s|$))`,
		Platform: PlatformPOSIX,
	},
	{
		ID:       "rd-recursive-quiet",
		Pattern:  `\b(?:rd|rmdir)\s(?=(?:[^;&|]*\s)?/s(?:\s|$))(?=(?:[^;&|]*\s)?/q(?:\s|$))`,
		Platform: PlatformWindows,
	},
	{
		ID:       "del-recursive-forced",
		Pattern:  `\b(?:del|erase)\s(?=(?:[^;&|]*\s)?/s(?:\s|$))(?=(?:[^;&|]*\s)?/[qf](?:\s|$))`,
		Platform: PlatformWindows,
	},
	{
		ID:       "remove-item-recurse",
		Pattern:  `\b(?:remove-item|ri|rm|rmdir|rd|del|erase)\s(?=(?:[^;|]*\s)?-recurse(?:\s|$|:))`,
		Platform: PlatformWindows,
	},
})

// subpath extends a target to anything below it.
const subpath = `(?:/[^\s;&|"']*)?`

// deleteTargets recognize root-like, home-like and system-critical paths.
// /home and /Users are dangerous themselves and one level down; a project
// deeper inside a home directory, and anything under /tmp, is fair game.
var deleteTargets = mustCompileRules([]Rule{
	{ID: "root", Pattern: argStart + `/\*?` + argEnd, Platform: PlatformPOSIX},
	{
		ID:       "system-dir",
		Pattern:  argStart + `/(?:etc|usr|var|root|bin|sbin|lib|lib32|lib64|boot|opt|sys|proc|dev|srv|system|library|applications)` + subpath + argEnd,
		Platform: PlatformPOSIX,
	},
	{ID: "home-root", Pattern: argStart + `/(?:home|users)/?\*?` + argEnd, Platform: PlatformPOSIX},
	{ID: "user-home", Pattern: argStart + `/(?:home|users)/[^/\s"';&|]+/?\*?` + argEnd, Platform: PlatformPOSIX},
	{ID: "home", Pattern: argStart + `(?:~|\$home|\$\{home\})/?\*?` + argEnd, Platform: PlatformPOSIX},
	// "." only as the last word, so "find . -exec rm -rf {} +" is not caught.
	{ID: "current-dir", Pattern: argStart + `\.(?:[\\/]\*?)?["']?\s*$`, Platform: PlatformAny},
	{ID: "parent", Pattern: argStart + `\.\.(?:[\\/][^\s;&|"']*)?` + argEnd, Platform: PlatformAny},
	{ID: "drive-root", Pattern: argStart + `[a-z]:[\\/]?\*?` + argEnd, Platform: PlatformWindows},
	{
		ID:       "windows-system-dir",
		Pattern:  argStart + `[a-z]:[\\/](?:windows|program files(?: \(x86\))?|programdata|users)[\\/]?\*?` + argEnd,
		Platform: PlatformWindows,
	},
	{ID: "windows-user-profile", Pattern: argStart + `[a-z]:[\\/]users[\\/][^\\/\s"';&|]+[\\/]?\*?` + argEnd, Platform: PlatformWindows},
	{
		ID:       "windows-env-var",
		Pattern:  argStart + `%(?:systemroot|windir|userprofile|systemdrive|homedrive|programfiles)%[\\/]?\*?` + argEnd,
		Platform: PlatformWindows,
	},
	{
		ID:       "powershell-env-var",
		Pattern:  argStart + `\$env:(?:userprofile|systemroot|windir|systemdrive|homedrive|homepath|home|programfiles)[\\/]?\*?` + argEnd,
		Platform: PlatformWindows,
	},
})

// DestructiveDelete blocks a recursive, forced delete only when the same
// simple command also names a dangerous target. Deleting a project
// subdirectory stays allowed.
type DestructiveDelete struct {
	actions []compiledRule
	targets []compiledRule
}

func NewDestructiveDelete() *DestructiveDelete {
	return &DestructiveDelete{actions: deleteActions, targets: deleteTargets}
}

func (d *DestructiveDelete) Category() Category { return CategoryDestructiveDelete }

func (d *DestructiveDelete) Applicable(in *Input) bool { return in.Shell() }

func (d *DestructiveDelete) Detect(in *Input) (*Finding, error) {
	for _, seg := range in.Segments {
		action, err := firstMatch(d.actions, seg)
		if err != nil {
			return nil, err
		}
		if action == nil {
			continue
		}
		target, err := firstMatch(d.targets, seg)
		if err != nil {
			return nil, err
		}
		if target == nil {
			continue
		}
		return &Finding{
			Category: CategoryDestructiveDelete,
			RuleID:   action.ID + "+" + target.ID,
			Platform: action.Platform,
			Reason:   deleteReason,
		}, nil
	}
	return nil, nil
}

// Action returns the ID of the delete action matched by a single command, or "".
func (d *DestructiveDelete) Action(cmd string) (string, error) {
	return matchedID(d.actions, cmd)
}

// Target returns the ID of the dangerous target matched by a single command, or "".
func (d *DestructiveDelete) Target(cmd string) (string, error) {
	return matchedID(d.targets, cmd)
}

func matchedID(rules []compiledRule, s string) (string, error) {
	r, err := firstMatch(rules, s)
	if err != nil || r == nil {
		return "", err
	}
	return r.ID, nil
}
