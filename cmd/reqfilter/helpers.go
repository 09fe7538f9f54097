package main

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/kr/pretty"
	"github.com/mailru/easyjson"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"fiatjaf.com/reqfilter"
)

func isPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}

// getStdinLinesOrFirstArgument yields the first argument if there is one, otherwise each
// non-empty line from stdin.
func getStdinLinesOrFirstArgument(c *cli.Command) iter.Seq[string] {
	if arg := c.Args().First(); arg != "" {
		return func(yield func(string) bool) { yield(arg) }
	}
	if !isPiped() {
		return func(yield func(string) bool) {}
	}
	return readLines(os.Stdin)
}

func readLines(r io.Reader) iter.Seq[string] {
	return func(yield func(string) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 16*1024*1024), 256*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

// parseFilters accepts a single filter, an array of filters or a whole ["REQ", <id>, ...] message.
func parseFilters(input string) ([]reqfilter.Filter, error) {
	objects, err := filterObjects(input)
	if err != nil {
		return nil, err
	}

	filters := make([]reqfilter.Filter, len(objects))
	for i, raw := range objects {
		f, err := reqfilter.ParseFilter([]byte(raw))
		if err != nil {
			return nil, err
		}
		filters[i] = f
	}
	return filters, nil
}

// parseFlatFilters is parseFilters for flat filters.
func parseFlatFilters(input string) ([]reqfilter.FlatFilter, error) {
	objects, err := filterObjects(input)
	if err != nil {
		return nil, err
	}

	flats := make([]reqfilter.FlatFilter, len(objects))
	for i, raw := range objects {
		ff, err := reqfilter.ParseFlatFilter([]byte(raw))
		if err != nil {
			return nil, err
		}
		flats[i] = ff
	}
	return flats, nil
}

func filterObjects(input string) ([]string, error) {
	if !gjson.Valid(input) {
		return nil, fmt.Errorf("not valid json")
	}

	r := gjson.Parse(input)
	switch {
	case r.IsObject():
		return []string{r.Raw}, nil
	case r.IsArray():
		arr := r.Array()
		if len(arr) > 0 && arr[0].Type == gjson.String {
			if arr[0].Str != "REQ" {
				return nil, fmt.Errorf("not a REQ message: '%s'", arr[0].Str)
			}
			if len(arr) < 2 {
				return nil, fmt.Errorf("REQ message without subscription id")
			}
			arr = arr[2:]
		}
		objects := make([]string, len(arr))
		for i, item := range arr {
			if !item.IsObject() {
				return nil, fmt.Errorf("item %d is not an object", i)
			}
			objects[i] = item.Raw
		}
		return objects, nil
	default:
		return nil, fmt.Errorf("expected an object or an array")
	}
}

func printAll[T easyjson.Marshaler](w io.Writer, items []T) {
	for _, item := range items {
		j, _ := easyjson.Marshal(item)
		fmt.Fprintln(w, string(j))
	}
}

func stdout(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func debugDump(msg string, v any) {
	if e := logger.Debug(); e.Enabled() {
		e.Msg(msg + "\n" + pretty.Sprint(v))
	}
}
