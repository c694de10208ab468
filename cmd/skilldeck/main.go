package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skilldeck/skilldeck/pkg/engine"
	"github.com/skilldeck/skilldeck/pkg/logger"
	"github.com/skilldeck/skilldeck/pkg/presenter"
	"github.com/skilldeck/skilldeck/pkg/tui"
)

// defaultRepoDir is used when no repository root argument is given.
const defaultRepoDir = "skills"

func init() {
	viper.SetEnvPrefix("SKILLDECK")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skilldeck")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	viper.SetDefault("package.output_dir", "dist")
}

var rootCmd = &cobra.Command{
	Use:   "skilldeck [repository-root]",
	Short: "Browse, install, and package skill bundles",
	Long: `skilldeck is an interactive browser for skill bundles: directories
containing a SKILL.md manifest plus optional resources, templates, and
scripts. It discovers bundles under a repository root, validates their
manifests, and installs or packages the ones you pick.

With no argument the repository root defaults to ./skills.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine(args)
		if err != nil {
			presenter.Error(err, "Failed to open skill repository")
			os.Exit(1)
		}

		// The TUI owns the terminal; keep log lines out of the way.
		logger.SetLogOutput(os.Stderr)

		cfg := tui.Config{OutputDir: viper.GetString("package.output_dir")}
		if err := tui.Run(cmd.Context(), eng, cfg); err != nil {
			presenter.Error(err, "Browser failed")
			os.Exit(1)
		}
	},
}

// newEngine resolves the repository root argument (or its default) and
// opens an engine on it. A root that does not exist or is not a directory
// is the only startup-fatal condition.
func newEngine(args []string) (*engine.Engine, error) {
	root := filepath.Join(".", defaultRepoDir)
	if len(args) > 0 {
		root = args[0]
	}

	opts := []engine.Option{}
	if globs := viper.GetStringSlice("package.ignore"); len(globs) > 0 {
		opts = append(opts, engine.WithIgnoreGlobs(globs...))
	}
	return engine.New(root, opts...)
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
