package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"fiatjaf.com/reqfilter"
)

var fields = &cli.Command{
	Name:  "fields",
	Usage: "lists the filter fields this tool understands",
	Action: func(ctx context.Context, c *cli.Command) error {
		w := stdout(c)
		for _, f := range reqfilter.Fields() {
			fmt.Fprintf(w, "%-8s %-8s %-8s %s\n", f.Name, f.FlatName, f.Value, f.Role)
		}
		return nil
	},
}
