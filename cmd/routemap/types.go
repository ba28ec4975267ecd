package main

import "github.com/jward/routemap"

// CLIResult is the top-level JSON envelope for scan output.
type CLIResult struct {
	Command string     `json:"command"`
	Results []CLIRoute `json:"results"`
	Error   string     `json:"error,omitempty"`
}

// CLIRoute is a JSON-friendly route record.
type CLIRoute struct {
	Verb       string `json:"verb"`
	Path       string `json:"path"`
	Owner      string `json:"owner"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	ImplFile   string `json:"impl_file,omitempty"`
	ImplLine   int    `json:"impl_line,omitempty"`
	ClientName string `json:"client_name,omitempty"`
}

// toCLIRoutes converts engine records for output. Always returns a non-nil
// slice so JSON output is [] rather than null for empty scans.
func toCLIRoutes(records []routemap.RouteRecord) []CLIRoute {
	routes := make([]CLIRoute, 0, len(records))
	for _, r := range records {
		routes = append(routes, CLIRoute{
			Verb:       r.Verb,
			Path:       r.Path,
			Owner:      r.DisplayName,
			File:       r.DeclFile,
			Line:       r.DeclLine,
			ImplFile:   r.ImplFile,
			ImplLine:   r.ImplLine,
			ClientName: r.ClientName,
		})
	}
	return routes
}
