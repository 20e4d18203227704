package cli

import (
	"fmt"

	"github.com/gzhole/hookguard/internal/config"
	"github.com/gzhole/hookguard/internal/hook"
	"github.com/gzhole/hookguard/internal/logger"
	"github.com/gzhole/hookguard/internal/request"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Self-test: verify hookguard blocks known-dangerous requests",
	Long: `Run a quick diagnostic that feeds known-dangerous and known-safe requests
through the detectors with your current config and packs. Nothing is
executed and nothing is written to the audit log.

  hookguard scan`,
	Args: cobra.NoArgs,
	RunE: scanCommand,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

type scanCase struct {
	label       string
	tool        string
	input       map[string]any
	wantBlocked bool
}

type scanResult struct {
	scanCase
	blocked bool
	ruleID  string
	err     error
}

func (r scanResult) pass() bool { return r.err == nil && r.blocked == r.wantBlocked }

var scanCases = []scanCase{
	{"Recursive delete of /", "Bash", map[string]any{"command": "rm -rf /"}, true},
	{"Delete home", "Bash", map[string]any{"command": "rm -rf ~"}, true},
	{"Delete system config", "Bash", map[string]any{"command": "rm -rf /etc/nginx"}, true},
	{"Delete working dir", "Bash", map[string]any{"command": "rm -rf ."}, true},
	{"Windows profile wipe", "PowerShell", map[string]any{"command": `Remove-Item -Recurse -Force C:\Users\bob`}, true},
	{"Disk format", "Bash", map[string]any{"command": "mkfs.ext4 /dev/sda1"}, true},
	{"Raw disk write", "Bash", map[string]any{"command": "dd if=/dev/zero of=/dev/sda"}, true},
	{"Fork bomb", "Bash", map[string]any{"command": ":(){ :|:& };:"}, true},
	{"Reboot on a later line", "Bash", map[string]any{"command": "cd /tmp\nsudo -u root reboot"}, true},
	{"Privileged container", "Bash", map[string]any{"command": "docker run --privileged ubuntu"}, true},
	{"Host root mount", "Bash", map[string]any{"command": "docker run -v /:/host ubuntu"}, true},
	{"Write .env", "Write", map[string]any{"file_path": ".env"}, true},
	{"Shell write .env", "Bash", map[string]any{"command": "echo KEY=1 > .env"}, true},
	{"Safe listing", "Bash", map[string]any{"command": "ls -la"}, false},
	{"Local delete", "Bash", map[string]any{"command": "rm -rf ./build"}, false},
	{"Delete then list root", "Bash", map[string]any{"command": "rm -rf build\nls /"}, false},
	{"Write template", "Write", map[string]any{"file_path": ".env.example"}, false},
	{"Plain container", "Bash", map[string]any{"command": "docker run --rm alpine echo hi"}, false},
}

func runScan(ev hook.Evaluator, cases []scanCase) []scanResult {
	results := make([]scanResult, 0, len(cases))
	for _, tc := range cases {
		r := scanResult{scanCase: tc}
		verdict, err := ev.Evaluate(request.ToolRequest{ToolName: tc.tool, ToolInput: tc.input})
		if err != nil {
			r.err = err
		} else {
			r.blocked = verdict.Blocked()
			r.ruleID = verdict.RuleID
		}
		results = append(results, r)
	}
	return results
}

func scanCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.NewDiagnostic(cfg.LogLevel)
	defer func() { _ = lg.Sync() }()

	engine, err := loadEngine(cfg, lg)
	if err != nil {
		return fmt.Errorf("failed to build detectors: %w", err)
	}

	printHeader("hookguard Self-Test")
	fmt.Println()

	results := runScan(engine, scanCases)
	passed := 0
	for _, r := range results {
		if r.pass() {
			passed++
		}
		outcome := decisionLabel(r.blocked)
		if r.err != nil {
			outcome = styleWarn.Render("ERROR " + r.err.Error())
		} else if r.ruleID != "" {
			outcome += styleMuted.Render(" (" + r.ruleID + ")")
		}
		fmt.Printf("  %s  %-22s  %s → %s\n", passMark(r.pass()), r.label, styleCommand.Render(summaryOf(r.input)), outcome)
	}

	fmt.Printf("\n  %d/%d passed\n\n", passed, len(results))
	if passed != len(results) {
		return fmt.Errorf("%d self-test case(s) failed", len(results)-passed)
	}
	return nil
}

func summaryOf(input map[string]any) string {
	if c, ok := input["command"].(string); ok {
		return c
	}
	p, _ := input["file_path"].(string)
	return p
}
