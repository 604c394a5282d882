package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/logstore/core/internal/config"
	"github.com/logstore/core/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	db          *gorm.DB
	cfg         *config.Config
	userService *services.UserService
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "logstore",
	Short: "Multi-tenant log storage API",
	Long: `logstore stores application logs per user behind a bearer-token API.
Run without arguments to start the HTTP server.

Examples:
  logstore user create              # create a user interactively
  logstore user list                # list active users
  logstore user reset-pwd           # reset a user's password
  logstore config init config.yaml  # write the effective configuration`,
	SilenceUsage: true,
}

// Execute runs the CLI with the provided database and config
func Execute(database *gorm.DB, config *config.Config, logger *slog.Logger) {
	db = database
	cfg = config
	userService = services.NewUserService(db, logger)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(configCmd)
}
