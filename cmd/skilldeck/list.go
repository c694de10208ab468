package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skilldeck/skilldeck/pkg/presenter"
)

var listCmd = &cobra.Command{
	Use:   "list [repository-root]",
	Short: "List discovered skill bundles",
	Long:  `List every bundle directory under the repository root with its validation status.`,
	Args:  cobra.MaximumNArgs(1),
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

		if len(summaries) == 0 {
			presenter.Info("No bundles found in " + eng.Root())
			return
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSTATUS\tVERSION\tDESCRIPTION")
		fmt.Fprintln(tw, "----\t------\t-------\t-----------")

		for _, sum := range summaries {
			version, description := "-", ""
			if sum.Manifest != nil {
				if sum.Manifest.Version != "" {
					version = sum.Manifest.Version
				}
				description = sum.Manifest.Description
			}
			if len(description) > 60 {
				description = description[:57] + "..."
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", sum.ID, sum.Status, version, description)
		}
		tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
