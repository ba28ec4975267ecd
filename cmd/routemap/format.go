package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jward/routemap"
)

// outputRoutes writes the route table to stdout in the selected format.
func outputRoutes(records []routemap.RouteRecord) error {
	routes := toCLIRoutes(records)
	switch flagFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResult{Command: "scan", Results: routes})
	default:
		formatRoutesText(os.Stdout, routes)
		return nil
	}
}

// formatRoutesText formats routes as aligned columns.
func formatRoutesText(w io.Writer, routes []CLIRoute) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERB\tPATH\tOWNER\tLOCATION")
	for _, r := range routes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s:%d\n", r.Verb, r.Path, r.Owner, r.File, r.Line)
	}
	tw.Flush()
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
