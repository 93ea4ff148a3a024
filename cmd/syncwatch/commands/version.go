package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syncwatch/syncwatch/version"
)

var verbose bool

// VersionCmd prints the syncwatch version.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
			return nil
		}

		values, err := json.MarshalIndent(struct {
			Syncwatch string `json:"syncwatch"`
			GitCommit string `json:"git_commit"`
		}{
			Syncwatch: version.SWCoreSemVer,
			GitCommit: version.GitCommit,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(values))
		return nil
	},
}

func init() {
	VersionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show git commit")
}
