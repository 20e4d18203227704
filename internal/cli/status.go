package cli

import (
	"fmt"
	"os"

	"github.com/gzhole/hookguard/internal/config"
	"github.com/gzhole/hookguard/internal/logger"
	"github.com/gzhole/hookguard/internal/policy"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show hookguard status: hook, config, packs, audit log",
	Long: `Check whether hookguard is active: whether the Claude Code hook is
installed, which config and packs are in effect, and how large the audit
log is.

  hookguard status`,
	Args: cobra.NoArgs,
	RunE: statusCommand,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusCommand(cmd *cobra.Command, args []string) error {
	printHeader("hookguard Status")
	fmt.Println()

	binPath, err := os.Executable()
	if err != nil {
		binPath = "unknown"
	}
	fmt.Printf("  Binary:    %s (%s)\n", binPath, Version)
	fmt.Println()

	printSection("Claude Code Hook")
	checkClaudeHook()
	fmt.Println()

	printSection("Config")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("  %s %s\n", passMark(false), styleBlock.Render(err.Error()))
		fmt.Println(styleMuted.Render("    The hook applies the fail policy to every request until this is fixed."))
		return nil
	}
	if _, err := os.Stat(cfg.ConfigPath); err == nil {
		fmt.Printf("  %s %s\n", passMark(true), cfg.ConfigPath)
	} else {
		fmt.Printf("  %s %s %s\n", styleMuted.Render("-"), cfg.ConfigPath, styleMuted.Render("(not present, using defaults)"))
	}
	fmt.Printf("    fail_policy: %s\n", cfg.FailPolicy)
	fmt.Printf("    log_level:   %s\n", cfg.LogLevel)
	fmt.Printf("    extra rules: %d\n", len(cfg.ExtraRules))
	fmt.Println()

	printSection("Rule Packs")
	_, infos, err := policy.LoadPacks(cfg.PacksDir)
	switch {
	case err != nil:
		fmt.Printf("  %s %s\n", passMark(false), err)
	case len(infos) == 0:
		fmt.Printf("  %s %s\n", styleMuted.Render("-"), styleMuted.Render("none in "+cfg.PacksDir))
	default:
		for _, info := range infos {
			switch {
			case info.Err != nil:
				fmt.Printf("  %s %s %s\n", styleWarn.Render("!"), info.Name, styleWarn.Render("(invalid, skipped)"))
			case info.Enabled:
				fmt.Printf("  %s %s (%d rules)\n", passMark(true), info.Name, info.RuleCount)
			default:
				fmt.Printf("  %s %s %s\n", styleMuted.Render("-"), info.Name, styleMuted.Render("(disabled)"))
			}
		}
	}
	fmt.Println()

	printSection("Audit Log")
	entries, err := logger.NewStore(cfg.LogPath, nil).Entries()
	if err != nil {
		fmt.Printf("  %s %s\n", passMark(false), err)
	} else {
		blocked := 0
		for _, e := range entries {
			if e.Blocked {
				blocked++
			}
		}
		fmt.Printf("  %s %s\n", passMark(true), cfg.LogPath)
		fmt.Printf("    %d entries (%d blocked), capacity %d\n", len(entries), blocked, logger.DefaultCapacity)
	}
	fmt.Println()
	return nil
}

func checkClaudeHook() {
	settingsPath, err := claudeSettingsPath()
	if err != nil {
		fmt.Printf("  %s %s\n", passMark(false), err)
		return
	}
	settings, err := readClaudeSettings(settingsPath)
	if err != nil {
		fmt.Printf("  %s %s\n", passMark(false), err)
		return
	}
	hooks, _ := settings["hooks"].(map[string]interface{})
	preToolUse, _ := hooks["PreToolUse"].([]interface{})
	for _, entry := range preToolUse {
		if isHookguardEntry(entry) {
			fmt.Printf("  %s installed in %s\n", passMark(true), settingsPath)
			return
		}
	}
	fmt.Printf("  %s not installed %s\n", passMark(false), styleMuted.Render("(run: hookguard setup)"))
}
