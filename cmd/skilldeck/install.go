package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skilldeck/skilldeck/pkg/install"
	"github.com/skilldeck/skilldeck/pkg/presenter"
)

type installConfig struct {
	Global    bool
	Target    string
	Overwrite bool
	Root      string
}

func installConfigFromFlags(cmd *cobra.Command) *installConfig {
	config := &installConfig{}
	config.Global, _ = cmd.Flags().GetBool("global")
	config.Target, _ = cmd.Flags().GetString("target")
	config.Overwrite, _ = cmd.Flags().GetBool("overwrite")
	config.Root, _ = cmd.Flags().GetString("root")
	return config
}

var installCmd = &cobra.Command{
	Use:   "install <bundle-name>",
	Short: "Install a bundle to a target directory",
	Long: `Install a validated bundle by copying its full directory tree under a
target root. The default target is the project-local ./.claude/skills
directory; use --global for ~/.claude/skills or --target for any other
root.

If the destination already exists you are asked before it is replaced;
--overwrite skips the question. The copy is transactional: a failure
part-way leaves any existing install untouched.

Examples:
  skilldeck install markdown-formatter
  skilldeck install markdown-formatter --global
  skilldeck install markdown-formatter --target /srv/shared/skills --overwrite`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := installConfigFromFlags(cmd)
		bundleID := args[0]

		var roots []string
		if config.Root != "" {
			roots = append(roots, config.Root)
		}
		eng, err := newEngine(roots)
		if err != nil {
			presenter.Error(err, "Failed to open skill repository")
			os.Exit(1)
		}

		target := install.ProjectTarget()
		switch {
		case config.Target != "":
			target = install.CustomTarget(config.Target)
		case config.Global:
			target, err = install.GlobalTarget()
			if err != nil {
				presenter.Error(err, "Failed to resolve user-global target")
				os.Exit(1)
			}
		}

		outcome := eng.Install(cmd.Context(), bundleID, target, config.Overwrite)

		if outcome.Code == install.Conflict {
			answer := presenter.Prompt(fmt.Sprintf("%s already exists. Overwrite?", outcome.Path), "y", "N")
			if !strings.EqualFold(answer, "y") {
				presenter.Info("Install cancelled")
				return
			}
			outcome = eng.Install(cmd.Context(), bundleID, target, true)
		}

		switch outcome.Code {
		case install.Installed:
			presenter.Success(fmt.Sprintf("Installed %s to %s", bundleID, outcome.Path))
		case install.Conflict:
			presenter.Warning(fmt.Sprintf("%s already exists; rerun with --overwrite to replace it", outcome.Path))
			os.Exit(1)
		default:
			presenter.Error(outcome.Err, fmt.Sprintf("Failed to install %s (%s)", bundleID, outcome.ErrKind))
			os.Exit(1)
		}
	},
}

func init() {
	installCmd.Flags().BoolP("global", "g", false, "Install to the user-global ~/.claude/skills directory")
	installCmd.Flags().StringP("target", "t", "", "Install under an arbitrary target root")
	installCmd.Flags().Bool("overwrite", false, "Replace an existing install without asking")
	installCmd.Flags().StringP("root", "r", "", "Skill repository root (default ./skills)")
	rootCmd.AddCommand(installCmd)
}
