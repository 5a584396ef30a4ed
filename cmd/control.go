package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli"
)

func next(ctx *cli.Context) error {
	client, err := dial(ctx)
	if err != nil {
		return nil
	}
	defer client.Close()
	id, err := client.Next(context.Background())
	if err != nil {
		return printRuntimeErr("next", err)
	}
	fmt.Println(id)
	return nil
}

func prev(ctx *cli.Context) error {
	client, err := dial(ctx)
	if err != nil {
		return nil
	}
	defer client.Close()
	id, err := client.Prev(context.Background())
	if err != nil {
		return printRuntimeErr("prev", err)
	}
	fmt.Println(id)
	return nil
}

func show(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" {
		cli.ShowCommandHelp(ctx, ctx.Command.Name)
		return errors.New("no photo id provided")
	}
	photoID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid photo id %q", arg)
	}
	client, err := dial(ctx)
	if err != nil {
		return nil
	}
	defer client.Close()
	id, err := client.Show(context.Background(), photoID)
	if err != nil {
		return printRuntimeErr("show", err)
	}
	fmt.Println(id)
	return nil
}

func info(ctx *cli.Context) error {
	client, err := dial(ctx)
	if err != nil {
		return nil
	}
	defer client.Close()
	if err := client.ShowInfo(context.Background()); err != nil {
		return printRuntimeErr("info", err)
	}
	return nil
}

func status(ctx *cli.Context) error {
	client, err := dial(ctx)
	if err != nil {
		return nil
	}
	defer client.Close()
	st, err := client.Status(context.Background())
	if err != nil {
		return printRuntimeErr("status", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}

func slideshowStart(ctx *cli.Context) error {
	client, err := dial(ctx)
	if err != nil {
		return nil
	}
	defer client.Close()
	if err := client.StartSlideshow(context.Background()); err != nil {
		return printRuntimeErr("slideshow start", err)
	}
	fmt.Println("Slideshow started.")
	return nil
}

func slideshowStop(ctx *cli.Context) error {
	client, err := dial(ctx)
	if err != nil {
		return nil
	}
	defer client.Close()
	if err := client.StopSlideshow(context.Background()); err != nil {
		return printRuntimeErr("slideshow stop", err)
	}
	fmt.Println("Slideshow stopped.")
	return nil
}

func stopDaemon(ctx *cli.Context) error {
	client, err := dial(ctx)
	if err != nil {
		return nil
	}
	defer client.Close()
	if err := client.Stop(context.Background()); err != nil {
		return printRuntimeErr("stop", err)
	}
	fmt.Println("Daemon stopped.")
	return nil
}
