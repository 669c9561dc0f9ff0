package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log"

	"github.com/josephlewis42/smallsh/core/config"
	"github.com/spf13/cobra"
)

var cfgPath string

func loadConfig() (*config.Configuration, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}

	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "smallsh",
	Short: "A small interactive shell",
	Long: `A small interactive shell with background jobs.

Commands are split on spaces. "$$" expands to the shell's PID, "< file" and
"> file" redirect standard input and output, and a trailing "&" runs the
command in the background. SIGTSTP (Ctrl-Z) toggles foreground-only mode,
in which "&" is ignored.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		return runShell(cmd.Context(), configuration)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	log.SetPrefix("smallsh: ")
	log.SetFlags(0)

	cobra.CheckErr(rootCmd.ExecuteContext(context.Background()))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config directory or config.yaml path, the built in defaults are used if empty")
}
