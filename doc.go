// Package routemap reconstructs the HTTP route table of a Spring MVC project
// by static analysis of its source tree. It combines per-file annotation
// scraping, cross-file name resolution (interface to implementation, feign
// client to interface), and path concatenation into a single deduplicated,
// deterministic list of routes.
//
// # Pipeline
//
// A scan runs three composed stages:
//
//  1. Extract: each file's text is classified line-by-line into a
//     FileDescriptor — declared type, inheritance edges, routing
//     annotations, feign-client markers. Extraction is per-file and
//     side-effect free, so it fans out over a worker pool.
//
//  2. Link: entry-point descriptors are resolved against a name-keyed
//     interface table. Interface-declared routes point at the interface
//     file and line (the contract is the primary navigation target), with
//     the implementing method attached as a supplementary location.
//     Directly-annotated methods emit under the class's own path.
//
//  3. Resolve clients: feign-client descriptors contribute routes for
//     endpoints not already covered locally, tagged with the client's
//     logical name.
//
// The final set is sorted by path; ties keep file-enumeration order.
//
// # Usage
//
// Create an Engine and scan a directory:
//
//	e := routemap.New()
//	records, err := e.ScanDirectory(ctx, "/path/to/project")
//
// Or supply your own file list:
//
//	records, err := e.Scan(ctx, root, files)
//
// Matching is loose and single-line oriented — there is no parser or AST.
// Annotations spanning multiple lines silently produce no route, by design.
// Scans are stateless; the result cache in internal/store is owned by the
// CLI layer, never by the Engine.
package routemap
