package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skilldeck/skilldeck/pkg/presenter"
)

var packageCmd = &cobra.Command{
	Use:   "package <bundle-name>",
	Short: "Package a bundle as a zip archive",
	Long: `Package a validated bundle into a zip archive for distribution. Entries
are written in sorted order with a fixed timestamp, so packaging the
same bundle twice produces byte-identical archives.

The archive is written to <output-dir>/<bundle-name>.zip unless --output
names a file explicitly.

Examples:
  skilldeck package markdown-formatter
  skilldeck package markdown-formatter --output /tmp/out.zip`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bundleID := args[0]
		output, _ := cmd.Flags().GetString("output")
		root, _ := cmd.Flags().GetString("root")

		var roots []string
		if root != "" {
			roots = append(roots, root)
		}
		eng, err := newEngine(roots)
		if err != nil {
			presenter.Error(err, "Failed to open skill repository")
			os.Exit(1)
		}

		if output == "" {
			output = filepath.Join(viper.GetString("package.output_dir"), bundleID+".zip")
		}

		result, err := eng.Package(cmd.Context(), bundleID, output)
		if err != nil {
			presenter.Error(err, "Failed to package "+bundleID)
			os.Exit(1)
		}

		presenter.Success(fmt.Sprintf("Packaged %d file(s) to %s", result.Entries, result.Path))
	},
}

func init() {
	packageCmd.Flags().StringP("output", "o", "", "Archive output path (default <output-dir>/<name>.zip)")
	packageCmd.Flags().StringP("root", "r", "", "Skill repository root (default ./skills)")
	rootCmd.AddCommand(packageCmd)
}
