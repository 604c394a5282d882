package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// configCmd represents the config command group
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
}

// configInitCmd writes the effective configuration to a file
var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the effective configuration to a JSON or YAML file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "config.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := cfg.Save(path); err != nil {
			fail("failed to write %s: %v", path, err)
		}
		fmt.Printf("Configuration written to %s\n", path)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
