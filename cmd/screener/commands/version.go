package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time: -ldflags "-X .../commands.version=v1.2.3"
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the screener version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "screener %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
