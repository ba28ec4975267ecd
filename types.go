package routemap

import (
	"github.com/jward/routemap/internal/extract"
	"github.com/jward/routemap/internal/resolve"
)

// Public type aliases for internal types used in the Engine API. These are
// Go type aliases (=) — identical to the internal types at compile time.

type RouteRecord = resolve.RouteRecord
type FileDescriptor = extract.FileDescriptor
type Mapping = extract.Mapping
type Method = extract.Method

// VerbRequest is the sentinel verb for generic mappings with no explicit
// RequestMethod.
const VerbRequest = extract.VerbRequest

// ClientSuffix tags routes that resolve to a remote-client stub.
const ClientSuffix = resolve.ClientSuffix
