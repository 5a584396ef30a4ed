// Package cmd is the inkframe command line: it either runs the daemon or
// talks to a running one over the control socket.
package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"
)

// BuildArgs carries build-time identity injected by the linker.
type BuildArgs struct {
	Version string
	Commit  string
	Date    string
}

var versionStr string

func Execute(args []string, bArgs BuildArgs) error {
	app := cli.App{
		Name:      "inkframe",
		HelpName:  "inkframe",
		Usage:     "An e-ink photo frame daemon and remote.",
		Version:   bArgs.Version,
		UsageText: "inkframe <command> [arguments...]",
		Commands: []cli.Command{
			{
				Name:   "daemon",
				Usage:  "run the photo frame daemon",
				Action: daemonCmd,
				Flags:  daemonFlags,
			},
			{
				Name:    "next",
				Aliases: []string{"n"},
				Usage:   "advance to the next photo",
				Action:  next,
				Flags:   socketFlags,
			},
			{
				Name:    "prev",
				Aliases: []string{"p"},
				Usage:   "step back to the previously shown photo",
				Action:  prev,
				Flags:   socketFlags,
			},
			{
				Name:      "show",
				Usage:     "display a specific photo by id",
				UsageText: "inkframe show <photo-id>",
				Action:    show,
				Flags:     socketFlags,
			},
			{
				Name:   "info",
				Usage:  "put the device info screen on the display",
				Action: info,
				Flags:  socketFlags,
			},
			{
				Name:   "status",
				Usage:  "print the daemon status",
				Action: status,
				Flags:  socketFlags,
			},
			{
				Name:  "slideshow",
				Usage: "control automatic cycling",
				Subcommands: []cli.Command{
					{
						Name:   "start",
						Action: slideshowStart,
						Flags:  socketFlags,
					},
					{
						Name:   "stop",
						Action: slideshowStop,
						Flags:  socketFlags,
					},
				},
			},
			{
				Name:      "import",
				Aliases:   []string{"i"},
				Usage:     "copy photos into the library",
				UsageText: "inkframe import <file or directory>...",
				Action:    importPhotos,
				Flags:     importFlags,
			},
			{
				Name:   "stop",
				Usage:  "stop a running daemon",
				Action: stopDaemon,
				Flags:  socketFlags,
			},
			{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "print the installed version",
				Action:  printVersion,
			},
		},
	}
	versionStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}

func printVersion(*cli.Context) error {
	fmt.Print(versionStr)
	return nil
}
