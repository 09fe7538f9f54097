package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"fiatjaf.com/reqfilter"
)

var expand = &cli.Command{
	Name:        "expand",
	ArgsUsage:   "[<filter-json>]",
	Usage:       "prints every flat filter a filter stands for",
	Description: "takes a filter, an array of filters or a REQ message as argument or reads a stream of them from stdin,\nthen prints one flat filter per line.",
	Action: func(ctx context.Context, c *cli.Command) error {
		hasError := false
		for line := range getStdinLinesOrFirstArgument(c) {
			filters, err := parseFilters(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid filter '%s': %s\n", line, err)
				hasError = true
				continue
			}
			debugDump("expanding", filters)

			flats := reqfilter.ExpandAll(filters)
			logger.Debug().Int("filters", len(filters)).Int("flats", len(flats)).Msg("expanded")
			printAll(stdout(c), flats)
		}

		if hasError {
			os.Exit(123)
		}
		return nil
	},
}
