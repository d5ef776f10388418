package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

var version = "(unknown)"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	ctl := cli.NewApp()
	ctl.Name = "clinicctl"
	ctl.Usage = "Operate the clinic booking service"
	ctl.Version = version
	ctl.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "Dotenv file loaded before reading configuration",
			Value: ".env",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level for commands that talk to Google or Postgres",
			Value: "info",
		},
	}
	ctl.Commands = []cli.Command{
		AuthCmd,
		SlotsCmd,
		BookCmd,
		TokenCmd,
		MigrateCmd,
	}
	return ctl
}
