package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gzhole/hookguard/internal/config"
	"github.com/gzhole/hookguard/internal/hook"
	"github.com/gzhole/hookguard/internal/logger"
	"github.com/gzhole/hookguard/internal/policy"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// maxPayloadBytes bounds what is read from stdin; anything longer is
// truncated and will fail to decode.
const maxPayloadBytes = 4 << 20

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "PreToolUse hook handler for Claude Code",
	Long: `Reads a PreToolUse JSON payload from stdin, classifies the proposed tool
call and reports the decision through the exit code:

  0  allow
  2  block ("BLOCKED: <reason>" on stderr)

Every decision is appended to the audit log. If the payload cannot be read
or evaluated, the configured fail_policy decides (default: closed).

Setup:
  hookguard setup`,
	Args: cobra.NoArgs,
	RunE: hookCommand,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func hookCommand(cmd *cobra.Command, args []string) error {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("hook expects a JSON payload on stdin; try `hookguard check <command>` instead")
	}

	ctl, lg := buildController()
	defer func() { _ = lg.Sync() }()

	data, err := io.ReadAll(io.LimitReader(os.Stdin, maxPayloadBytes))
	if err != nil {
		lg.Warn("failed to read stdin", zap.Error(err))
	}

	out := ctl.Handle(data)
	if out.Message != "" {
		fmt.Fprintln(os.Stderr, out.Message)
	}
	if out.ExitCode != hook.ExitAllow {
		_ = lg.Sync()
		os.Exit(out.ExitCode)
	}
	return nil
}

// buildController wires config, engine and audit log. It always returns a
// usable controller: when setup fails the controller answers every request
// through the failure policy.
func buildController() (*hook.Controller, *zap.Logger) {
	cfg, err := config.Load(configPath)
	if err != nil {
		lg := logger.NewDiagnostic(zapcore.WarnLevel)
		lg.Error("config load failed", zap.Error(err))
		fallback, derr := config.Default()
		if derr != nil {
			return hook.NewController(hook.Unavailable(err), nil, config.DefaultFailPolicy, lg), lg
		}
		return hook.NewController(hook.Unavailable(err), auditLog(fallback, lg), fallback.FailPolicy, lg), lg
	}

	lg := logger.NewDiagnostic(cfg.LogLevel)
	var ev hook.Evaluator
	engine, err := loadEngine(cfg, lg)
	if err != nil {
		lg.Error("engine init failed", zap.Error(err))
		ev = hook.Unavailable(err)
	} else {
		ev = engine
	}
	return hook.NewController(ev, auditLog(cfg, lg), cfg.FailPolicy, lg), lg
}

func auditLog(cfg *config.Config, lg *zap.Logger) hook.AuditLog {
	if cfg.LogPath == "" {
		return nil
	}
	return logger.NewStore(cfg.LogPath, lg)
}

// loadEngine builds the detector engine with the configured extra rules and
// the rules of every enabled pack. Packs that fail to load are skipped.
func loadEngine(cfg *config.Config, lg *zap.Logger) (*policy.Engine, error) {
	rules, infos, err := cfg.Rules()
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.Err != nil {
			lg.Warn("rule pack skipped", zap.String("pack", info.Name), zap.String("path", info.Path), zap.Error(info.Err))
		}
	}
	return policy.NewDefaultEngine(rules)
}
