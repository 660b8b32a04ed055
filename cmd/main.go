package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"go.grc.dev/pkg"
)

func main() {
	cfg, err := grc.LoadConfig(os.Getenv, os.Executable)
	if err != nil {
		fmt.Fprintln(os.Stderr, "grc:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	d := grc.NewDriver(cfg, logger)

	code, err := d.Run(context.Background(), os.Args[1:])
	if err != nil {
		printError(err)
	}

	os.Exit(code)
}

func printError(err error) {
	var derr grc.DriverError
	if !errors.As(err, &derr) {
		fmt.Fprintln(os.Stderr, "grc:", err)
		return
	}

	switch e := derr.(type) {
	case *grc.MalformedFlagError, *grc.UnknownFlagError:
		fmt.Fprintln(os.Stderr, "grc:", e)
		fmt.Fprintln(os.Stderr, "usage: grc [-O<level>] [-i] [-f] [file]")
	case *grc.MissingInputError:
		fmt.Fprintln(os.Stderr, "grc:", e)
		fmt.Fprintln(os.Stderr, "usage: grc [-O<level>] [-i] [-f] [file]")
	case *grc.PathResolutionError:
		fmt.Fprintln(os.Stderr, "grc: cannot resolve", e)
	case *grc.SubprocessError:
		// The failing tool has already reported on stderr
	default:
		fmt.Fprintln(os.Stderr, "grc:", e)
	}
}
