package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gzhole/hookguard/internal/config"
	"github.com/gzhole/hookguard/internal/policy"
	"github.com/spf13/cobra"
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Manage rule packs",
	Long: `Manage hookguard rule packs.

A rule pack is a YAML file of extra system-destructive rules. Packs live in
~/.hookguard/packs/ (or packs_dir in the config) and their rules run after
the built-in ones. A pack whose file name starts with "_" is disabled.

Examples:
  hookguard pack list                  # List installed packs
  hookguard pack enable k8s-safety     # Enable a pack
  hookguard pack disable k8s-safety    # Disable a pack
  hookguard pack show k8s-safety       # Show pack contents`,
}

var packListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed rule packs",
	Args:  cobra.NoArgs,
	RunE:  packList,
}

var packEnableCmd = &cobra.Command{
	Use:   "enable <pack-name>",
	Short: "Enable a disabled rule pack",
	Args:  cobra.ExactArgs(1),
	RunE:  packEnable,
}

var packDisableCmd = &cobra.Command{
	Use:   "disable <pack-name>",
	Short: "Disable a rule pack (prefix with underscore)",
	Args:  cobra.ExactArgs(1),
	RunE:  packDisable,
}

var packShowCmd = &cobra.Command{
	Use:   "show <pack-name>",
	Short: "Show the contents of a rule pack",
	Args:  cobra.ExactArgs(1),
	RunE:  packShow,
}

func init() {
	packCmd.AddCommand(packListCmd)
	packCmd.AddCommand(packEnableCmd)
	packCmd.AddCommand(packDisableCmd)
	packCmd.AddCommand(packShowCmd)
	rootCmd.AddCommand(packCmd)
}

func packsDir() (string, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	return cfg.PacksDir, nil
}

func packList(cmd *cobra.Command, args []string) error {
	dir, err := packsDir()
	if err != nil {
		return err
	}

	_, infos, err := policy.LoadPacks(dir)
	if err != nil {
		return fmt.Errorf("failed to load packs: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No rule packs installed.")
		fmt.Printf("\nTo install packs, copy YAML files to: %s\n", dir)
		return nil
	}

	printSection("Installed Rule Packs")
	for _, info := range infos {
		status := passMark(info.Enabled)
		if info.Err != nil {
			status = styleWarn.Render("!")
		}
		fmt.Printf("  %s  %-25s %s\n", status, info.Name, styleMuted.Render(info.Description))
		switch {
		case info.Err != nil:
			fmt.Printf("       %s\n", styleWarn.Render("invalid: "+info.Err.Error()))
		case info.Version != "":
			fmt.Printf("       v%s by %s  (%d rules)\n", info.Version, info.Author, info.RuleCount)
		default:
			fmt.Printf("       (%d rules)\n", info.RuleCount)
		}
	}
	fmt.Printf("\nPacks directory: %s\n", dir)
	return nil
}

func packEnable(cmd *cobra.Command, args []string) error {
	dir, err := packsDir()
	if err != nil {
		return err
	}
	changed, err := renamePack(dir, args[0], true)
	if err != nil {
		return err
	}
	if changed {
		fmt.Printf("%s Pack '%s' enabled.\n", passMark(true), args[0])
	} else {
		fmt.Printf("Pack '%s' is already enabled.\n", args[0])
	}
	return nil
}

func packDisable(cmd *cobra.Command, args []string) error {
	dir, err := packsDir()
	if err != nil {
		return err
	}
	changed, err := renamePack(dir, args[0], false)
	if err != nil {
		return err
	}
	if changed {
		fmt.Printf("%s Pack '%s' disabled.\n", passMark(false), args[0])
	} else {
		fmt.Printf("Pack '%s' is already disabled.\n", args[0])
	}
	return nil
}

// renamePack toggles the "_" prefix on a pack file and reports whether the
// file was renamed.
func renamePack(dir, name string, enable bool) (bool, error) {
	enabledPath := filepath.Join(dir, name+".yaml")
	disabledPath := filepath.Join(dir, "_"+name+".yaml")

	from, to := enabledPath, disabledPath
	if enable {
		from, to = disabledPath, enabledPath
	}

	if _, err := os.Stat(from); err == nil {
		if err := os.Rename(from, to); err != nil {
			return false, fmt.Errorf("failed to rename pack: %w", err)
		}
		return true, nil
	}
	if _, err := os.Stat(to); err == nil {
		return false, nil
	}
	return false, fmt.Errorf("pack '%s' not found in %s", name, dir)
}

func packShow(cmd *cobra.Command, args []string) error {
	dir, err := packsDir()
	if err != nil {
		return err
	}

	path, err := packPath(dir, args[0])
	if err != nil {
		return err
	}

	_, infos, err := policy.LoadPacks(dir)
	if err != nil {
		return fmt.Errorf("failed to load packs: %w", err)
	}
	for _, info := range infos {
		if info.Path != path {
			continue
		}
		state := styleAllow.Render("enabled")
		if !info.Enabled {
			state = styleMuted.Render("disabled")
		}
		if info.Err != nil {
			state = styleWarn.Render("invalid: " + info.Err.Error())
		}
		fmt.Printf("%s  %s\n", styleTitle.Render(info.Name), state)
		fmt.Println(styleMuted.Render(path))
		fmt.Println()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// packPath returns the file of a pack, enabled or not.
func packPath(dir, name string) (string, error) {
	for _, candidate := range []string{name + ".yaml", "_" + name + ".yaml"} {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("pack '%s' not found in %s", name, dir)
}
