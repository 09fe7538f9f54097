package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"fiatjaf.com/reqfilter"
)

var flatMerge = &cli.Command{
	Name:        "flat-merge",
	ArgsUsage:   "[<flat-filters-json>]",
	Usage:       "merges flat filters into as few filters as possible",
	Description: "takes flat filters as argument or reads a stream of them from stdin, one or an array per line,\nthen merges all of them together and prints one filter per line.",
	Action: func(ctx context.Context, c *cli.Command) error {
		hasError := false
		var flats []reqfilter.FlatFilter
		for line := range getStdinLinesOrFirstArgument(c) {
			parsed, err := parseFlatFilters(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid flat filter '%s': %s\n", line, err)
				hasError = true
				continue
			}
			flats = append(flats, parsed...)
		}
		debugDump("merging", flats)

		merged := reqfilter.FlatMerge(flats)
		logger.Debug().Int("flats", len(flats)).Int("filters", len(merged)).Msg("merged")
		printAll(stdout(c), merged)

		if hasError {
			os.Exit(123)
		}
		return nil
	},
}

var compress = &cli.Command{
	Name:        "compress",
	ArgsUsage:   "[<filters-json>]",
	Usage:       "merges filters into as few filters as possible",
	Description: "takes filters as argument or reads a stream of them from stdin, one, an array or a REQ message per line,\nthen merges all of them together and prints one filter per line.",
	Action: func(ctx context.Context, c *cli.Command) error {
		hasError := false
		var filters []reqfilter.Filter
		for line := range getStdinLinesOrFirstArgument(c) {
			parsed, err := parseFilters(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid filter '%s': %s\n", line, err)
				hasError = true
				continue
			}
			filters = append(filters, parsed...)
		}
		debugDump("compressing", filters)

		compressed := reqfilter.Compress(filters)
		logger.Debug().Int("before", len(filters)).Int("after", len(compressed)).Msg("compressed")
		printAll(stdout(c), compressed)

		if hasError {
			os.Exit(123)
		}
		return nil
	},
}
