package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"github.com/inkframe/inkframe/pkg/framecli"
)

var socketFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "socket, s",
		Usage:  "daemon control socket `PATH`",
		EnvVar: "INKFRAME_SOCKET",
	},
}

// defaultDataDir is where the daemon keeps its database and settings.
func defaultDataDir() string {
	if v := os.Getenv("INKFRAME_DATA"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/var/lib/inkframe"
	}
	return filepath.Join(home, ".inkframe")
}

func socketPath(ctx *cli.Context) string {
	if v := ctx.String("socket"); v != "" {
		return v
	}
	return framecli.DefaultSocketPath()
}

// dial connects to the daemon, printing a friendly hint on failure.
func dial(ctx *cli.Context) (*framecli.Client, error) {
	c, err := framecli.Dial(socketPath(ctx))
	if err != nil {
		fmt.Fprintf(os.Stderr, "inkframe: %v\n", err)
		return nil, err
	}
	return c, nil
}

func printRuntimeErr(cmd string, err error) error {
	fmt.Fprintf(os.Stderr, "inkframe %s: %v\n", cmd, err)
	return cli.NewExitError("", 1)
}
