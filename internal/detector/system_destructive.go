package detector

// cmdStart anchors a pattern at the start of a simple command so that words
// inside arguments ("git commit -m 'fix reboot'") do not match. A command
// also starts after a privilege or nohup prefix (sudo flags may take a
// value), at the head of a "sh -c" script, and may be spelled with its
// absolute path.
const cmdStart = `(?:^|[;&|({]\s*|\b(?:sudo|doas|nohup|exec)\s+(?:-[a-z-]+(?:(?:\s+|=)[^\s;&|-][^\s;&|]*)?\s+)*|\b(?:sh|bash|zsh|dash|ksh)\s+-[a-z]*c\s+["'])(?:/[\w./-]*/)?`

// cmdEnd closes a command name.
const cmdEnd = `(?=$|[\s;&|)"'])`

// systemRules is evaluated top to bottom; the first hit's reason is shown to
// the agent as-is.
var systemRules = []Rule{
	// Disks and filesystems
	{ID: "mkfs", Pattern: `\bmkfs(?:\.[a-z0-9]+)?\b`, Platform: PlatformPOSIX,
		Reason: "Filesystem format command (mkfs) detected"},
	{ID: "disk-partition", Pattern: cmdStart + `(?:fdisk|sfdisk|cfdisk|gdisk|sgdisk|parted|wipefs)\b`, Platform: PlatformPOSIX,
		Reason: "Disk partitioning command detected"},
	{ID: "dd-block-device", Pattern: `\bdd\b[^;&|]*\bof=/dev/(?:sd|hd|vd|xvd|nvme|mmcblk|disk|rdisk|mapper/)`, Platform: PlatformPOSIX,
		Reason: "Raw write to a block device with dd detected"},
	{ID: "redirect-block-device", Pattern: `>\s*/dev/(?:sd[a-z]|hd[a-z]|vd[a-z]|xvd[a-z]|nvme\d|mmcblk\d|disk\d|rdisk\d)`, Platform: PlatformPOSIX,
		Reason: "Redirect onto a raw block device detected"},

	// Remote code
	{ID: "curl-pipe-interpreter",
		Pattern:  `\b(?:curl|wget|fetch)\b[^;&]*\|\s*(?:sudo\s+(?:-[a-z]+\s+)*)?(?:/[a-z/]*/)?(?:sh|bash|zsh|ksh|dash|fish|python[0-9.]*|perl|ruby|node|php)\b`,
		Platform: PlatformPOSIX,
		Reason:   "Piping a download into an interpreter is blocked; download and inspect the script first"},
	{ID: "interpreter-process-substitution", Pattern: `\b(?:sh|bash|zsh|source)\s+<\(\s*(?:curl|wget)\b`, Platform: PlatformPOSIX,
		Reason: "Piping a download into an interpreter is blocked; download and inspect the script first"},
	{ID: "interpreter-command-substitution", Pattern: `\b(?:sh|bash|zsh)\s+-c\s+["']?\$\(\s*(?:curl|wget)\b`, Platform: PlatformPOSIX,
		Reason: "Piping a download into an interpreter is blocked; download and inspect the script first"},

	// Permissions and credentials
	{ID: "chmod-world-writable",
		Pattern:  `\bchmod\s+(?:-[a-z]+\s+)*(?:[0-7]?777|a\+rwx|a\+w|o\+w|o\+rwx|ugo\+rwx)\s+["']?/(?:\*|etc|usr|var|bin|sbin|boot|lib|lib64|root|home|opt|sys|dev)?(?=$|[\s/;&|"'])`,
		Platform: PlatformPOSIX,
		Reason:   "World-writable permissions on a system path detected"},
	{ID: "credential-file-removal", Pattern: `\b(?:rm|shred|unlink|truncate|mv)\b[^;&|]*\s/etc/(?:passwd|shadow|gshadow|group|sudoers)\b`, Platform: PlatformPOSIX,
		Reason: "Removing or overwriting core credential files is blocked"},
	{ID: "credential-file-overwrite", Pattern: `>\s*/etc/(?:passwd|shadow|gshadow|group|sudoers)\b`, Platform: PlatformPOSIX,
		Reason: "Removing or overwriting core credential files is blocked"},

	// Process and host control
	{ID: "fork-bomb", Pattern: `([a-z_:][a-z0-9_:]*)\s*\(\)\s*\{\s*\1\s*\|\s*\1\s*&\s*\}`, Platform: PlatformPOSIX,
		Reason: "Fork bomb detected"},
	{ID: "batch-fork-bomb", Pattern: `%0\s*\|\s*%0`, Platform: PlatformWindows,
		Reason: "Fork bomb detected"},
	{ID: "shutdown", Pattern: cmdStart + `(?:shutdown|reboot|halt|poweroff)` + cmdEnd, Platform: PlatformAny,
		Reason: "System shutdown/reboot command detected"},
	{ID: "systemctl-power", Pattern: `\bsystemctl\s+(?:poweroff|reboot|halt|kexec)\b`, Platform: PlatformPOSIX,
		Reason: "System shutdown/reboot command detected"},
	{ID: "init-runlevel", Pattern: cmdStart + `init\s+[06]\b`, Platform: PlatformPOSIX,
		Reason: "System shutdown/reboot command detected"},

	// Reverse shells
	{ID: "netcat-exec", Pattern: `\b(?:nc|ncat|netcat)\b[^;&|]*(?:\s-[a-z]*e\s|\s--(?:sh-)?exec\b)`, Platform: PlatformPOSIX,
		Reason: "Reverse shell construct detected"},
	{ID: "dev-tcp", Pattern: `/dev/(?:tcp|udp)/`, Platform: PlatformPOSIX,
		Reason: "Reverse shell construct detected"},
	{ID: "socat-exec", Pattern: `\bsocat\b[^;&|]*\b(?:exec|system):`, Platform: PlatformPOSIX,
		Reason: "Reverse shell construct detected"},
	{ID: "mkfifo-netcat", Pattern: `\bmkfifo\b.*\b(?:nc|ncat|netcat)\b`, Platform: PlatformPOSIX,
		Reason: "Reverse shell construct detected"},
	{ID: "python-socket-shell", Pattern: `\bpython[0-9.]*\s+-c\b.*\bsocket\b.*\b(?:subprocess|pty|dup2)\b`, Platform: PlatformPOSIX,
		Reason: "Reverse shell construct detected"},
	{ID: "powershell-tcpclient", Pattern: `\bnet\.sockets\.tcpclient\b`, Platform: PlatformWindows,
		Reason: "Reverse shell construct detected"},

	// Source control and hosting
	{ID: "git-force-push", Pattern: `\bgit\s+push\b[^;&|]*\s(?:--force|-[a-z]*f[a-z]*)(?=$|[\s;&|])`, Platform: PlatformAny,
		Reason: "git push --force rewrites remote history; use --force-with-lease or ask the user"},
	{ID: "git-reset-hard", Pattern: `\bgit\s+reset\b[^;&|]*\s--hard\b`, Platform: PlatformAny,
		Reason: "git reset --hard discards uncommitted work"},
	{ID: "git-clean-force", Pattern: `\bgit\s+clean\b[^;&|]*\s(?:-[a-z]*f[a-z]*|--force)(?=$|[\s;&|])`, Platform: PlatformAny,
		Reason: "git clean -f permanently deletes untracked files"},
	{ID: "hosted-repo-delete", Pattern: `\b(?:gh|glab)\s+(?:repo|release)\s+delete\b`, Platform: PlatformAny,
		Reason: "Deleting a hosted repository or release is blocked"},
	{ID: "gh-api-delete", Pattern: `\bgh\s+api\b[^;&|]*\s(?:-x|--method)[\s=]+delete\b`, Platform: PlatformAny,
		Reason: "Deleting a hosted repository or release is blocked"},

	// Windows and PowerShell
	{ID: "format-drive", Pattern: cmdStart + `format(?:\.com)?\s+[a-z]:`, Platform: PlatformWindows,
		Reason: "Disk format command detected"},
	{ID: "powershell-disk", Pattern: `\b(?:format-volume|clear-disk|initialize-disk)\b`, Platform: PlatformWindows,
		Reason: "Disk format command detected"},
	{ID: "diskpart", Pattern: cmdStart + `diskpart(?:\.exe)?\b`, Platform: PlatformWindows,
		Reason: "diskpart can repartition or wipe disks"},
	{ID: "bcdedit", Pattern: `\bbcdedit(?:\.exe)?\b`, Platform: PlatformWindows,
		Reason: "Boot configuration change (bcdedit) detected"},
	{ID: "reg-delete",
		Pattern:  `\breg(?:\.exe)?\s+delete\s+["']?(?:hklm|hkey_local_machine|hkcu|hkey_current_user|hkcr|hkey_classes_root|hku|hkey_users|hkcc)\b`,
		Platform: PlatformWindows,
		Reason:   "Registry key deletion detected"},
	{ID: "powershell-registry-delete", Pattern: `\bremove-item(?:property)?\b[^;|]*\b(?:hklm|hkcu|hkcr|hku|registry):`, Platform: PlatformWindows,
		Reason: "Registry key deletion detected"},
	{ID: "net-user-delete", Pattern: `\bnet(?:\.exe)?\s+user\s+\S+\s+/del(?:ete)?\b`, Platform: PlatformWindows,
		Reason: "User account deletion detected"},
	{ID: "remove-localuser", Pattern: `\bremove-localuser\b`, Platform: PlatformWindows,
		Reason: "User account deletion detected"},
	{ID: "userdel", Pattern: cmdStart + `(?:userdel|deluser)\b`, Platform: PlatformPOSIX,
		Reason: "User account deletion detected"},
	{ID: "net-localgroup-admin", Pattern: `\bnet(?:\.exe)?\s+localgroup\s+administrators\b[^;&|]*\s/add\b`, Platform: PlatformWindows,
		Reason: "Adding accounts to an administrators group is blocked"},
	{ID: "add-localgroupmember-admin", Pattern: `\badd-localgroupmember\b[^;|]*\badministrators\b`, Platform: PlatformWindows,
		Reason: "Adding accounts to an administrators group is blocked"},
	{ID: "usermod-admin-group", Pattern: `\busermod\b[^;&|]*\s-[a-z]*g\s+["']?(?:sudo|wheel|admin|root)\b`, Platform: PlatformPOSIX,
		Reason: "Adding accounts to an administrators group is blocked"},
	{ID: "powershell-encoded",
		Pattern:  `\b(?:powershell|pwsh)(?:\.exe)?\b[^;&|]*\s-(?:e|ec|en|enc|enco|encod|encode|encoded|encodedcommand)\s`,
		Platform: PlatformWindows,
		Reason:   "Encoded PowerShell command detected"},
	{ID: "powershell-download-exec",
		Pattern:  `\b(?:iex|invoke-expression)\b[^;]*\b(?:downloadstring|downloadfile|invoke-webrequest|iwr|invoke-restmethod|irm|net\.webclient)\b`,
		Platform: PlatformWindows,
		Reason:   "Remote PowerShell execution detected"},
	{ID: "powershell-download-pipe-exec",
		Pattern:  `\b(?:iwr|irm|invoke-webrequest|invoke-restmethod|downloadstring)\b[^;]*\|\s*(?:iex|invoke-expression)\b`,
		Platform: PlatformWindows,
		Reason:   "Remote PowerShell execution detected"},
	{ID: "powershell-invoke-command-remote", Pattern: `\binvoke-command\b[^;|]*\s-computername\b`, Platform: PlatformWindows,
		Reason: "Remote PowerShell execution detected"},
	{ID: "service-delete", Pattern: `\bsc(?:\.exe)?\s+(?:\\\\\S+\s+)?delete\b`, Platform: PlatformWindows,
		Reason: "Windows service deletion detected"},
	{ID: "remove-service", Pattern: `\bremove-service\b`, Platform: PlatformWindows,
		Reason: "Windows service deletion detected"},
	{ID: "windows-shutdown", Pattern: `\bshutdown(?:\.exe)?\s+(?:[^;&|]*\s)?[/-][srp](?=$|\s)`, Platform: PlatformWindows,
		Reason: "Forced shutdown/restart detected"},
	{ID: "powershell-stop-computer", Pattern: `\b(?:stop|restart)-computer\b`, Platform: PlatformWindows,
		Reason: "Forced shutdown/restart detected"},
}

var builtinSystemRules = mustCompileRules(systemRules)

// SystemDestructive matches the command against a single ordered table of
// system-damaging operations.
type SystemDestructive struct {
	rules []compiledRule
}

// NewSystemDestructive builds the detector from the built-in table followed
// by extra, operator-supplied rules.
func NewSystemDestructive(extra []Rule) (*SystemDestructive, error) {
	rules := make([]compiledRule, 0, len(builtinSystemRules)+len(extra))
	rules = append(rules, builtinSystemRules...)
	compiled, err := compileRules(extra)
	if err != nil {
		return nil, err
	}
	return &SystemDestructive{rules: append(rules, compiled...)}, nil
}

func (d *SystemDestructive) Category() Category { return CategorySystemDestructive }

func (d *SystemDestructive) Applicable(in *Input) bool { return in.Shell() }

func (d *SystemDestructive) Detect(in *Input) (*Finding, error) {
	r, err := firstLineMatch(d.rules, in.Lines)
	if err != nil || r == nil {
		return nil, err
	}
	return &Finding{
		Category: CategorySystemDestructive,
		RuleID:   r.ID,
		Platform: r.Platform,
		Reason:   r.Reason,
	}, nil
}
