package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gzhole/hookguard/internal/config"
	"github.com/gzhole/hookguard/internal/hook"
	"github.com/gzhole/hookguard/internal/logger"
	"github.com/gzhole/hookguard/internal/policy"
	"github.com/gzhole/hookguard/internal/request"
	"github.com/spf13/cobra"
)

var (
	checkFile string
	checkTool string
)

var checkCmd = &cobra.Command{
	Use:   "check [command]",
	Short: "Classify a command or file write without running it",
	Long: `Run a single request through the detectors and explain the decision.
Nothing is executed and nothing is written to the audit log. Exits 2 when
the request would be blocked.

Examples:
  hookguard check 'rm -rf /'
  hookguard check 'docker run --privileged ubuntu'
  hookguard check --file config/.env
  hookguard check --tool PowerShell 'Remove-Item -Recurse -Force C:\'`,
	RunE: checkCommand,
}

func init() {
	checkCmd.Flags().StringVar(&checkFile, "file", "", "Classify a write to this path instead of a command")
	checkCmd.Flags().StringVar(&checkTool, "tool", "", "Tool name to classify as (default: Bash, or Write with --file)")
	rootCmd.AddCommand(checkCmd)
}

func checkCommand(cmd *cobra.Command, args []string) error {
	req, err := checkRequest(args)
	if err != nil {
		return err
	}

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

	verdict, err := engine.Evaluate(req)
	if err != nil {
		return fmt.Errorf("evaluation failed (fail_policy %s would apply): %w", cfg.FailPolicy, err)
	}

	fmt.Printf("%s  %s\n", decisionLabel(verdict.Blocked()), styleCommand.Render(describeRequest(req)))
	fmt.Print(policy.Explain(verdict))

	if verdict.Blocked() {
		os.Exit(hook.ExitBlock)
	}
	return nil
}

func checkRequest(args []string) (request.ToolRequest, error) {
	if checkFile != "" {
		if len(args) > 0 {
			return request.ToolRequest{}, errors.New("pass either a command or --file, not both")
		}
		tool := checkTool
		if tool == "" {
			tool = "Write"
		}
		return request.ToolRequest{
			ToolName:  tool,
			ToolInput: map[string]any{"file_path": checkFile},
		}, nil
	}

	if len(args) == 0 {
		return request.ToolRequest{}, errors.New("no command provided. Usage: hookguard check <command>")
	}
	tool := checkTool
	if tool == "" {
		tool = "Bash"
	}
	return request.ToolRequest{
		ToolName:  tool,
		ToolInput: map[string]any{"command": strings.Join(args, " ")},
	}, nil
}

func describeRequest(req request.ToolRequest) string {
	if c := req.Command(); c != "" {
		return req.ToolName + ": " + c
	}
	return req.ToolName + ": " + req.FilePath()
}
