package cmd

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli"

	"github.com/inkframe/inkframe/internal/daemon"
	"github.com/inkframe/inkframe/pkg/framecli"
	"github.com/inkframe/inkframe/pkg/logger"
)

var daemonFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "data-dir",
		Usage:  "database, settings and pid file `DIR`",
		EnvVar: "INKFRAME_DATA",
	},
	cli.StringFlag{
		Name:   "photo-dir",
		Usage:  "photo library `DIR`",
		EnvVar: "INKFRAME_PHOTOS",
	},
	cli.StringFlag{
		Name:  "http",
		Usage: "web server listen `ADDR`",
		Value: ":8080",
	},
	cli.StringFlag{
		Name:  "ftp",
		Usage: "FTP upload bridge listen `ADDR` (empty disables)",
	},
	cli.StringFlag{
		Name:   "socket",
		Usage:  "control socket `PATH`",
		EnvVar: "INKFRAME_SOCKET",
	},
	cli.StringFlag{
		Name:  "display-helper",
		Usage: "e-ink renderer `BINARY` (empty runs headless)",
	},
	cli.StringFlag{
		Name:  "gpio",
		Usage: "GPIO sysfs `PATH` for hardware buttons (empty disables)",
	},
	cli.StringFlag{
		Name:  "refresh-cron",
		Usage: "cron `EXPR` for the scheduled panel refresh",
		Value: "0 3 * * *",
	},
	cli.StringFlag{
		Name:  "log-file",
		Usage: "append logs to `PATH` instead of stderr",
	},
	cli.IntFlag{
		Name:  "max-conns",
		Usage: "cap concurrent HTTP connections (0 = unlimited)",
	},
}

func daemonCmd(ctx *cli.Context) error {
	dataDir := ctx.String("data-dir")
	if dataDir == "" {
		dataDir = defaultDataDir()
	}
	photoDir := ctx.String("photo-dir")
	if photoDir == "" {
		photoDir = filepath.Join(dataDir, "photos")
	}
	sock := ctx.String("socket")
	if sock == "" {
		sock = framecli.DefaultSocketPath()
	}

	var log logger.Logger
	if path := ctx.String("log-file"); path != "" {
		fl, err := logger.NewFileLogger(path)
		if err != nil {
			return printRuntimeErr("daemon", err)
		}
		log = fl
	} else {
		log = logger.NewStandardLogger(stdlog.Default())
	}
	defer log.Close()

	r, err := daemon.New(daemon.Config{
		DataDir:       dataDir,
		PhotoDir:      photoDir,
		HTTPAddr:      ctx.String("http"),
		FTPAddr:       ctx.String("ftp"),
		SocketPath:    sock,
		DisplayHelper: ctx.String("display-helper"),
		GPIOPath:      ctx.String("gpio"),
		RefreshCron:   ctx.String("refresh-cron"),
		MaxConns:      ctx.Int("max-conns"),
		Version:       ctx.App.Version,
	}, log)
	if err != nil {
		return printRuntimeErr("daemon", err)
	}

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := r.Run(runCtx); err != nil {
		return printRuntimeErr("daemon", err)
	}
	return nil
}
