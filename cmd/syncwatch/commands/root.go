package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syncwatch/syncwatch/config"
	"github.com/syncwatch/syncwatch/libs/cli"
	"github.com/syncwatch/syncwatch/libs/log"
)

// EnvPrefix is the prefix of environment variables read by syncwatch,
// e.g. SW_LOG_LEVEL.
const EnvPrefix = "SW"

// ParseConfig retrieves the default environment configuration,
// sets up the syncwatch root and ensures that the root exists
func ParseConfig(conf *config.Config) (*config.Config, error) {
	if err := viper.Unmarshal(conf); err != nil {
		return nil, err
	}

	conf.SetRoot(conf.RootDir)

	if err := conf.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("error in config file: %w", err)
	}
	return conf, nil
}

// RootCommand constructs the root command-line entry point for syncwatch.
func RootCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "syncwatch",
		Short: "Follow a block chain download and wait for it to finish",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == VersionCmd.Name() {
				return nil
			}

			pconf, err := ParseConfig(conf)
			if err != nil {
				return err
			}
			*conf = *pconf

			if err := config.EnsureRoot(conf.RootDir); err != nil {
				return err
			}
			logger.Debug("loaded config", "home", conf.RootDir, "file", conf.ConfigFile())
			return nil
		},
	}
	cmd.PersistentFlags().String("log-level", conf.LogLevel, "log level")
	cmd.PersistentFlags().String("log-format", conf.LogFormat, "log format: 'plain' or 'json'")
	return cli.PrepareBaseCmd(cmd, EnvPrefix, os.ExpandEnv(filepath.Join("$HOME", config.DefaultSyncwatchDir)))
}
