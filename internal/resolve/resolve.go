// Package resolve links per-file descriptors into the project's route table.
// Linking is a two-phase collect-then-resolve pass: descriptors are first
// partitioned into name-keyed lookup tables, then entry points and remote
// clients are resolved against those tables. References between files are
// held by declared name, never by pointer, because extraction order is
// arbitrary.
package resolve

import (
	"sort"
	"strings"

	"github.com/jward/routemap/internal/extract"
)

// ClientSuffix tags the display name of routes that originate from a remote
// client stub rather than a locally served controller.
const ClientSuffix = " (feign)"

// RouteRecord is one resolved endpoint. DeclFile/DeclLine point at the
// declaring interface or method, the primary navigation target. ImplFile and
// ImplLine are set when the record comes from an interface whose concrete
// implementation exists locally. ClientName is the feign client's logical
// name when the record comes from a client stub.
type RouteRecord struct {
	Verb        string
	Path        string
	DisplayName string
	DeclFile    string
	DeclLine    int
	ImplFile    string
	ImplLine    int
	ClientName  string
}

// Resolve runs the full linking pipeline: entry-point routes, then
// remote-client routes deduplicated against them, then a stable sort by
// path. Ties keep discovery order, which follows file-enumeration order.
func Resolve(descs []*extract.FileDescriptor) []RouteRecord {
	records := Link(descs)
	records = ResolveClients(descs, records)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})
	return records
}

// interfacesByName builds the lookup table for supertype resolution.
// Descriptors without a declared name never enter the table.
func interfacesByName(descs []*extract.FileDescriptor) map[string]*extract.FileDescriptor {
	m := make(map[string]*extract.FileDescriptor)
	for _, d := range descs {
		if d.Name != "" && d.Kind == extract.KindInterface {
			m[d.Name] = d
		}
	}
	return m
}

// Link emits routes for every service entry point.
//
// For an entry point implementing a known interface, every annotated
// interface method becomes a record whose declaration location is the
// interface's file and line; the matching implementing method contributes a
// supplementary implementation location. Separately, the entry point's own
// annotated non-override methods are emitted directly under its own
// type-level path. The two branches are deliberately non-exclusive: a method
// that is both an override and directly annotated emits from both.
func Link(descs []*extract.FileDescriptor) []RouteRecord {
	interfaces := interfacesByName(descs)

	var records []RouteRecord
	for _, d := range descs {
		if !d.EntryPoint || d.Name == "" {
			continue
		}

		if iface, ok := interfaces[d.Implements]; ok && d.Implements != "" {
			base := fragment(iface.TypeMapping)
			for _, m := range iface.Methods {
				if m.Mapping == nil {
					continue
				}
				records = append(records, RouteRecord{
					Verb:        m.Mapping.Verb,
					Path:        JoinPath(base, m.Mapping.Path),
					DisplayName: d.Name,
					DeclFile:    iface.Path,
					DeclLine:    m.Line,
					ImplFile:    d.Path,
					ImplLine:    implementationLine(d, m.Name),
				})
			}
		}

		// Own type-level path takes precedence for directly-declared
		// methods. Overrides are skipped: their routing belongs to the
		// interface branch above.
		base := fragment(d.TypeMapping)
		for _, m := range d.Methods {
			if m.Mapping == nil || m.Override {
				continue
			}
			records = append(records, RouteRecord{
				Verb:        m.Mapping.Verb,
				Path:        JoinPath(base, m.Mapping.Path),
				DisplayName: d.Name,
				DeclFile:    d.Path,
				DeclLine:    m.Line,
			})
		}
	}
	return records
}

// implementationLine finds the entry point's method matching the interface
// method by name. Falls back to line 1 so the record is still emitted with a
// usable jump target.
func implementationLine(d *extract.FileDescriptor, name string) int {
	for _, m := range d.Methods {
		if m.Name == name {
			return m.Line
		}
	}
	return 1
}

// ResolveClients appends routes declared by remote-client stubs, skipping
// any path already covered by existing records. Paths emitted earlier in
// this same pass suppress later duplicates too.
func ResolveClients(descs []*extract.FileDescriptor, records []RouteRecord) []RouteRecord {
	interfaces := interfacesByName(descs)

	used := make(map[string]bool, len(records))
	for _, r := range records {
		used[r.Path] = true
	}

	for _, d := range descs {
		if !d.FeignClient || d.Name == "" {
			continue
		}
		display := d.Name + ClientSuffix

		if iface, ok := interfaces[d.Extends]; ok && d.Extends != "" {
			base := d.ClientBase
			if base == "" {
				base = fragment(iface.TypeMapping)
			}
			for _, m := range iface.Methods {
				if m.Mapping == nil {
					continue
				}
				path := JoinPath(base, m.Mapping.Path)
				if used[path] {
					continue
				}
				used[path] = true
				records = append(records, RouteRecord{
					Verb:        m.Mapping.Verb,
					Path:        path,
					DisplayName: display,
					DeclFile:    iface.Path,
					DeclLine:    m.Line,
					ClientName:  d.ClientName,
				})
			}
		}

		// A client annotated directly rather than via inheritance. Without a
		// type-level fragment or a path= base there is nothing to anchor the
		// client's own methods to, so the branch emits nothing.
		if d.TypeMapping == nil && d.ClientBase == "" {
			continue
		}
		base := fragment(d.TypeMapping)
		if base == "" {
			base = d.ClientBase
		}
		for _, m := range d.Methods {
			if m.Mapping == nil {
				continue
			}
			path := JoinPath(base, m.Mapping.Path)
			if used[path] {
				continue
			}
			used[path] = true
			records = append(records, RouteRecord{
				Verb:        m.Mapping.Verb,
				Path:        path,
				DisplayName: display,
				DeclFile:    d.Path,
				DeclLine:    m.Line,
				ClientName:  d.ClientName,
			})
		}
	}
	return records
}

// fragment unwraps an optional type-level mapping into its path.
func fragment(m *extract.Mapping) string {
	if m == nil {
		return ""
	}
	return m.Path
}

// JoinPath concatenates a type-level fragment and a method fragment.
// Each fragment is normalized to carry a leading slash and no trailing
// slash, so the join never produces a doubled or missing separator. A fully
// empty result collapses to the root path.
func JoinPath(typeLevel, method string) string {
	full := normalizeFragment(typeLevel) + normalizeFragment(method)
	if full == "" {
		return "/"
	}
	return full
}

// normalizeFragment prefixes the fragment with a slash and strips trailing
// slashes; a bare "/" collapses to empty before concatenation.
func normalizeFragment(s string) string {
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	s = strings.TrimRight(s, "/")
	return s
}
