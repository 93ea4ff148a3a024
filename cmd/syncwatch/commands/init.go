package commands

import (
	"github.com/spf13/cobra"

	"github.com/syncwatch/syncwatch/config"
	"github.com/syncwatch/syncwatch/libs/log"
)

// MakeInitCommand returns the command that writes a config file into the
// home directory.
func MakeInitCommand(conf *config.Config) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file to the home directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := log.NewLogger(cmd.OutOrStdout(), conf.LogFormat, conf.LogLevel)
			if err != nil {
				return err
			}

			// the root pre-run already wrote defaults if there was no file
			if !force {
				logger.Info("found config file", "path", conf.ConfigFile())
				return nil
			}

			if err := config.UpdateConfigFile(cmd.Context(), conf.RootDir, conf); err != nil {
				return err
			}
			logger.Info("updated config file", "path", conf.ConfigFile())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "write the current settings into an existing config file")
	return cmd
}
