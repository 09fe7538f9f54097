package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"fiatjaf.com/reqfilter"
)

var diff = &cli.Command{
	Name:        "diff",
	ArgsUsage:   "<prev-flat-filters-json> <next-flat-filters-json>",
	Usage:       "prints the flat filters of the second list that are not in the first",
	Description: "each argument can be a flat filter or an array of them.",
	Action: func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 2 {
			return fmt.Errorf("diff takes exactly two arguments")
		}

		prev, err := parseFlatFilters(c.Args().Get(0))
		if err != nil {
			return fmt.Errorf("invalid previous flat filters: %w", err)
		}
		next, err := parseFlatFilters(c.Args().Get(1))
		if err != nil {
			return fmt.Errorf("invalid next flat filters: %w", err)
		}
		debugDump("diffing", map[string][]reqfilter.FlatFilter{"prev": prev, "next": next})

		added := reqfilter.Diff(prev, next)
		logger.Debug().Int("prev", len(prev)).Int("next", len(next)).Int("added", len(added)).Msg("diffed")
		printAll(stdout(c), added)
		return nil
	},
}

var getDiff = &cli.Command{
	Name:        "get-diff",
	ArgsUsage:   "<prev-filters-json> <next-filters-json>",
	Usage:       "expands both filter lists and prints the flat filters only the second one needs",
	Description: "each argument can be a filter, an array of filters or a REQ message.",
	Action: func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 2 {
			return fmt.Errorf("get-diff takes exactly two arguments")
		}

		prev, err := parseFilters(c.Args().Get(0))
		if err != nil {
			return fmt.Errorf("invalid previous filters: %w", err)
		}
		next, err := parseFilters(c.Args().Get(1))
		if err != nil {
			return fmt.Errorf("invalid next filters: %w", err)
		}
		debugDump("diffing", map[string][]reqfilter.Filter{"prev": prev, "next": next})

		added := reqfilter.GetDiff(prev, next)
		logger.Debug().Int("added", len(added)).Msg("diffed")
		printAll(stdout(c), added)
		return nil
	},
}
