package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print hookguard version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", styleTitle.Render("hookguard"), Version)
		fmt.Println(styleMuted.Render(fmt.Sprintf("  Commit: %s", GitCommit)))
		fmt.Println(styleMuted.Render(fmt.Sprintf("  Built:  %s", BuildDate)))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
