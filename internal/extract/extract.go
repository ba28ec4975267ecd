// Package extract turns one Java source file into a FileDescriptor: the
// declared type, its inheritance edges, Spring routing annotations, and
// feign-client markers. It operates line-by-line over raw text with loose
// pattern matching; annotations spanning multiple lines are unsupported and
// silently produce no route fragment.
package extract

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// TypeKind distinguishes the two declaration forms the extractor recognizes.
type TypeKind int

const (
	KindClass TypeKind = iota
	KindInterface
)

// VerbRequest is the sentinel verb used when a generic @RequestMapping
// carries no RequestMethod parameter. Records never have an empty verb.
const VerbRequest = "REQUEST"

// Mapping is one parsed routing annotation. An empty Path is meaningful: a
// bare annotation with no arguments maps to the enclosing type-level path.
// Absence of any annotation is represented as a nil *Mapping, never as an
// empty Path.
type Mapping struct {
	Path string
	Verb string
}

// Method is one recognized method-signature line. Line is 1-based.
type Method struct {
	Name     string
	Line     int
	Mapping  *Mapping
	Override bool
}

// FileDescriptor is the per-file extraction result. Descriptors with an
// empty Name carry no usable declaration and are excluded from all
// downstream name lookups.
type FileDescriptor struct {
	Path string
	Name string
	Kind TypeKind

	// EntryPoint marks @RestController/@Controller types.
	EntryPoint bool

	// FeignClient marks declarative remote-client interfaces. ClientName and
	// ClientBase come from the name= and path= annotation parameters; either
	// may be empty when the parameter is missing.
	FeignClient bool
	ClientName  string
	ClientBase  string

	// Implements / Extends reference another declared type by name only.
	// Resolution happens later by lookup; the referenced file may not have
	// been extracted yet.
	Implements string
	Extends    string

	// TypeMapping is the type-level route fragment, set by the first routing
	// annotation seen before the type declaration.
	TypeMapping *Mapping

	Methods []Method
}

var (
	reController  = regexp.MustCompile(`@(RestController|Controller)\b`)
	reFeignClient = regexp.MustCompile(`@FeignClient\s*(?:\(([^)]*)\))?`)
	reFeignName   = regexp.MustCompile(`name\s*=\s*"([^"]*)"`)
	reFeignPath   = regexp.MustCompile(`path\s*=\s*"([^"]*)"`)

	reInterfaceDecl = regexp.MustCompile(`\binterface\s+([A-Za-z_$][\w$]*)`)
	reClassDecl     = regexp.MustCompile(`\bclass\s+([A-Za-z_$][\w$]*)`)
	reExtends       = regexp.MustCompile(`\bextends\s+([A-Za-z_$][\w$]*)`)
	reImplements    = regexp.MustCompile(`\bimplements\s+([A-Za-z_$][\w$]*)`)

	reVerbMapping    = regexp.MustCompile(`@(Get|Post|Put|Delete|Patch)Mapping\b`)
	reRequestMapping = regexp.MustCompile(`@RequestMapping\b`)
	reRequestMethod  = regexp.MustCompile(`RequestMethod\.([A-Z]+)`)

	reOverride = regexp.MustCompile(`@Override\b`)

	// Path-argument fallback patterns, tried in order; first match wins.
	rePathBare  = regexp.MustCompile(`\(\s*"([^"]*)"`)
	rePathValue = regexp.MustCompile(`value\s*=\s*"([^"]*)"`)
	rePathAttr  = regexp.MustCompile(`path\s*=\s*"([^"]*)"`)

	// Method heuristic: an identifier immediately followed by '('.
	reMethodName = regexp.MustCompile(`([A-Za-z_$][\w$]*)\(`)
)

// methodKeywords blocks control-flow and other keywords from being mistaken
// for method names by the signature heuristic.
var methodKeywords = map[string]bool{
	"if":           true,
	"else":         true,
	"for":          true,
	"while":        true,
	"do":           true,
	"switch":       true,
	"catch":        true,
	"try":          true,
	"return":       true,
	"throw":        true,
	"new":          true,
	"super":        true,
	"this":         true,
	"synchronized": true,
}

// Extract classifies contents line-by-line and returns the file's
// descriptor. Unrecognizable input yields a descriptor with an empty Name,
// which callers drop. Extract returns nil when the input cannot be scanned
// to the end (a line exceeding the buffer cap); such a file is treated like
// an unreadable one rather than extracted partially.
//
// At most one pending annotation and one pending override flag are carried
// across lines; a method-signature line consumes both. This is the only
// state threaded through the loop, which is what limits annotations to a
// single line immediately preceding their method.
func Extract(path string, contents []byte) *FileDescriptor {
	d := &FileDescriptor{Path: path}

	var pending *Mapping
	pendingOverride := false

	lineNo := 0
	sc := bufio.NewScanner(bytes.NewReader(contents))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*") {
			continue
		}

		switch {
		case reController.MatchString(line):
			d.EntryPoint = true

		case strings.Contains(line, "@FeignClient"):
			d.FeignClient = true
			if m := reFeignClient.FindStringSubmatch(line); m != nil && m[1] != "" {
				if n := reFeignName.FindStringSubmatch(m[1]); n != nil {
					d.ClientName = n[1]
				}
				if p := reFeignPath.FindStringSubmatch(m[1]); p != nil {
					d.ClientBase = p[1]
				}
			}

		case reInterfaceDecl.MatchString(line):
			m := reInterfaceDecl.FindStringSubmatch(line)
			d.Name = m[1]
			d.Kind = KindInterface
			if x := reExtends.FindStringSubmatch(line); x != nil {
				d.Extends = x[1]
			}

		case reClassDecl.MatchString(line):
			m := reClassDecl.FindStringSubmatch(line)
			d.Name = m[1]
			d.Kind = KindClass
			if x := reImplements.FindStringSubmatch(line); x != nil {
				d.Implements = x[1]
			}

		case reVerbMapping.MatchString(line) || reRequestMapping.MatchString(line):
			mapping := parseMapping(line)
			if d.Name == "" && d.TypeMapping == nil {
				// Annotation above the type declaration: type-level path.
				d.TypeMapping = mapping
			} else {
				pending = mapping
			}

		case reOverride.MatchString(line):
			pendingOverride = true

		default:
			if pending == nil && !pendingOverride {
				continue
			}
			name, ok := methodName(line)
			if !ok {
				continue
			}
			d.Methods = append(d.Methods, Method{
				Name:     name,
				Line:     lineNo,
				Mapping:  pending,
				Override: pendingOverride,
			})
			pending = nil
			pendingOverride = false
		}
	}
	if sc.Err() != nil {
		return nil
	}

	return d
}

// parseMapping reads the verb and path argument from a single routing
// annotation line. A bare annotation with no parenthesis group still yields
// an empty path fragment rather than an absent one.
func parseMapping(line string) *Mapping {
	verb := VerbRequest
	if m := reVerbMapping.FindStringSubmatch(line); m != nil {
		verb = strings.ToUpper(m[1])
	} else if m := reRequestMethod.FindStringSubmatch(line); m != nil {
		verb = m[1]
	}

	path := ""
	for _, re := range []*regexp.Regexp{rePathBare, rePathValue, rePathAttr} {
		if m := re.FindStringSubmatch(line); m != nil {
			path = m[1]
			break
		}
	}
	return &Mapping{Path: path, Verb: verb}
}

// methodName applies the signature heuristic to one line: the first
// identifier immediately followed by '(' that is not a blocked keyword.
// Annotation lines are never method signatures.
func methodName(line string) (string, bool) {
	if strings.HasPrefix(strings.TrimSpace(line), "@") {
		return "", false
	}
	for _, m := range reMethodName.FindAllStringSubmatch(line, -1) {
		if !methodKeywords[m[1]] {
			return m[1], true
		}
	}
	return "", false
}
