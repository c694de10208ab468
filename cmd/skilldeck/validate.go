package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skilldeck/skilldeck/pkg/presenter"
	"github.com/skilldeck/skilldeck/pkg/skills"
)

var validateCmd = &cobra.Command{
	Use:   "validate [repository-root]",
	Short: "Validate every bundle and report all problems",
	Long: `Validate each bundle's manifest against the structural rules and print
the complete list of violations per bundle. Exits non-zero when any
bundle is invalid or missing its manifest.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine(args)
		if err != nil {
			presenter.Error(err, "Failed to open skill repository")
			os.Exit(1)
		}

		summaries, err := eng.Discover(cmd.Context())
		if err != nil {
			presenter.Error(err, "Discovery failed")
			os.Exit(1)
		}

		clean := true
		for _, sum := range summaries {
			switch sum.Status {
			case skills.StatusValid:
				presenter.Success(sum.ID)
			case skills.StatusMissing:
				clean = false
				presenter.Warning(fmt.Sprintf("%s: no %s", sum.ID, skills.EntryFileName))
			default:
				clean = false
				presenter.Warning(sum.ID + ":")
				for _, reason := range sum.Reasons {
					presenter.Info("    • " + reason)
				}
			}
		}

		presenter.Info(fmt.Sprintf("\n%d bundle(s) checked", len(summaries)))
		if !clean {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
