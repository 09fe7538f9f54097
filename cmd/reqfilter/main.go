package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

var logger = zerolog.Nop()

var app = &cli.Command{
	Name:      "reqfilter",
	Usage:     "expands, diffs and merges nostr REQ filters",
	UsageText: "reqfilter <expand|diff|get-diff|flat-merge|compress|fields> ...",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "print debug information to stderr",
		},
	},
	Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
		level := zerolog.InfoLevel
		if c.Bool("verbose") {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
		})).Level(level).With().Timestamp().Logger()
		return ctx, nil
	},
	Commands: []*cli.Command{
		expand,
		diff,
		getDiff,
		flatMerge,
		compress,
		fields,
	},
}

func main() {
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
