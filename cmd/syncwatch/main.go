package main

import (
	"context"
	"fmt"
	"os"

	"github.com/syncwatch/syncwatch/cmd/syncwatch/commands"
	"github.com/syncwatch/syncwatch/config"
	"github.com/syncwatch/syncwatch/libs/cli"
	"github.com/syncwatch/syncwatch/libs/log"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf := config.DefaultConfig()

	logger, err := log.NewDefaultLogger(conf.LogFormat, conf.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	rcmd := commands.RootCommand(conf, logger)
	rcmd.AddCommand(
		commands.MakeInitCommand(conf),
		commands.MakeSimulateCommand(conf),
		commands.VersionCmd,
	)

	if err := cli.Execute(ctx, rcmd); err != nil {
		os.Exit(1)
	}
}
