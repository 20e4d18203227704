package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

// hookCommandLine is what Claude Code runs for every matched tool call.
const hookCommandLine = "hookguard hook"

// hookMatcher selects the tools the hook sees: the shell tool and every
// file-writing tool.
const hookMatcher = "Bash|Edit|Write|MultiEdit|NotebookEdit"

var (
	disableFlag  bool
	settingsFile string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install the Claude Code PreToolUse hook",
	Long: `Install or remove the PreToolUse hook so every shell command and file
write Claude Code makes is classified by hookguard before it runs.

  hookguard setup             # enable hook in ~/.claude/settings.json
  hookguard setup --disable   # remove hook`,
	Args: cobra.NoArgs,
	RunE: setupCommand,
}

func init() {
	setupCmd.Flags().BoolVar(&disableFlag, "disable", false, "Remove the hook")
	setupCmd.Flags().StringVar(&settingsFile, "settings", "", "Claude Code settings file (default: ~/.claude/settings.json)")
	rootCmd.AddCommand(setupCmd)
}

func claudeSettingsPath() (string, error) {
	if settingsFile != "" {
		return settingsFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".claude", "settings.json"), nil
}

func setupCommand(cmd *cobra.Command, args []string) error {
	settingsPath, err := claudeSettingsPath()
	if err != nil {
		return err
	}

	if disableFlag {
		return disableClaudeCodeHook(settingsPath)
	}

	printHeader("hookguard + Claude Code (PreToolUse Hook)")
	fmt.Println()

	binPath, err := exec.LookPath("hookguard")
	if err != nil {
		fmt.Println(styleWarn.Render("!  hookguard not found in PATH. Install it first:"))
		fmt.Println("   go install github.com/gzhole/hookguard/cmd/hookguard@latest")
		return nil
	}
	fmt.Printf("%s hookguard found: %s\n", passMark(true), binPath)

	settings, err := readClaudeSettings(settingsPath)
	if err != nil {
		return err
	}

	if !installHookEntry(settings) {
		fmt.Printf("%s Claude Code hook already configured: %s\n", passMark(true), settingsPath)
		fmt.Println()
		fmt.Println("To disable: hookguard setup --disable")
		return nil
	}

	if err := writeClaudeSettings(settingsPath, settings); err != nil {
		return err
	}

	fmt.Printf("%s PreToolUse hook installed: %s\n", passMark(true), settingsPath)
	fmt.Println()
	fmt.Println("How it works:")
	fmt.Println("  1. Claude Code is about to run a shell command or write a file")
	fmt.Println("  2. The PreToolUse hook calls `hookguard hook`")
	fmt.Println("  3. hookguard classifies the request")
	fmt.Println("  4. If blocked: Claude Code is told why and the tool call is skipped")
	fmt.Println("  5. Otherwise the tool call runs normally")
	fmt.Println()
	fmt.Println("Test without an agent:  hookguard check 'rm -rf /'")
	fmt.Println("To disable:             hookguard setup --disable")
	return nil
}

func disableClaudeCodeHook(settingsPath string) error {
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		fmt.Println("No settings.json found for Claude Code, nothing to disable.")
		return nil
	}

	settings, err := readClaudeSettings(settingsPath)
	if err != nil {
		return err
	}

	if !removeHookEntry(settings) {
		fmt.Println("hookguard hook not found in Claude Code settings, nothing to disable.")
		return nil
	}

	if err := writeClaudeSettings(settingsPath, settings); err != nil {
		return err
	}

	fmt.Printf("%s hookguard hook disabled for Claude Code\n", passMark(true))
	fmt.Printf("   Settings: %s\n", settingsPath)
	fmt.Println()
	fmt.Println("Re-enable anytime with: hookguard setup")
	return nil
}

// installHookEntry adds the hookguard entry under hooks.PreToolUse and
// reports whether settings changed.
func installHookEntry(settings map[string]interface{}) bool {
	hooks := getOrCreateMap(settings, "hooks")
	preToolUse := getOrCreateSlice(hooks, "PreToolUse")

	for _, entry := range preToolUse {
		if isHookguardEntry(entry) {
			return false
		}
	}

	hooks["PreToolUse"] = append(preToolUse, map[string]interface{}{
		"matcher": hookMatcher,
		"hooks": []interface{}{
			map[string]interface{}{
				"type":    "command",
				"command": hookCommandLine,
			},
		},
	})
	settings["hooks"] = hooks
	return true
}

// removeHookEntry drops every hookguard entry, pruning hooks.PreToolUse and
// hooks when they end up empty. Other entries are left untouched.
func removeHookEntry(settings map[string]interface{}) bool {
	hooks, ok := settings["hooks"].(map[string]interface{})
	if !ok {
		return false
	}

	preToolUse, _ := hooks["PreToolUse"].([]interface{})
	var kept []interface{}
	removed := false
	for _, entry := range preToolUse {
		if isHookguardEntry(entry) {
			removed = true
			continue
		}
		kept = append(kept, entry)
	}
	if !removed {
		return false
	}

	if len(kept) == 0 {
		delete(hooks, "PreToolUse")
	} else {
		hooks["PreToolUse"] = kept
	}
	if len(hooks) == 0 {
		delete(settings, "hooks")
	}
	return true
}

// isHookguardEntry returns true if the hook entry contains our command.
func isHookguardEntry(entry interface{}) bool {
	m, ok := entry.(map[string]interface{})
	if !ok {
		return false
	}
	subHooks, _ := m["hooks"].([]interface{})
	for _, h := range subHooks {
		if hm, ok := h.(map[string]interface{}); ok {
			if hm["command"] == hookCommandLine {
				return true
			}
		}
	}
	return false
}

func readClaudeSettings(path string) (map[string]interface{}, error) {
	settings := make(map[string]interface{})
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return settings, nil
}

func writeClaudeSettings(path string, settings map[string]interface{}) error {
	out, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func getOrCreateMap(parent map[string]interface{}, key string) map[string]interface{} {
	if v, ok := parent[key].(map[string]interface{}); ok {
		return v
	}
	m := make(map[string]interface{})
	parent[key] = m
	return m
}

func getOrCreateSlice(parent map[string]interface{}, key string) []interface{} {
	if v, ok := parent[key].([]interface{}); ok {
		return v
	}
	return nil
}
