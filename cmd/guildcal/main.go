package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"git.sr.ht/~mariusor/guildcal"
	"git.sr.ht/~mariusor/guildcal/internal/cmd"
)

var version = "(unknown)"

func main() {
	var err error

	ctl := cli.App{
		Name:    guildcal.AppName,
		Usage:   "Publishes the scheduled events of Discord guilds as iCalendar files",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "path",
				Usage: "The folder the calendars are written to",
				Value: ".",
			},
			&cli.StringFlag{
				Name:  "data",
				Usage: "The folder for the publication ledger",
				Value: cmd.DataPath(),
			},
			&cli.StringFlag{
				Name:   "token",
				Usage:  "Discord bot token",
				EnvVar: cmd.TokenEnv,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Output debug messages",
			},
		},
		Commands: []cli.Command{
			cmd.RunCmd,
			cmd.PublishCmd,
			cmd.RemoveCmd,
			cmd.ListCmd,
			cmd.ServeCmd,
		},
	}

	err = ctl.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
