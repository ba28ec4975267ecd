package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ex(t *testing.T, src string) *FileDescriptor {
	t.Helper()
	return Extract("/src/Test.java", []byte(src))
}

func TestExtract_EntryPointMarkers(t *testing.T) {
	for _, marker := range []string{"@RestController", "@Controller"} {
		d := ex(t, marker+"\npublic class UserController {\n}\n")
		assert.True(t, d.EntryPoint, marker)
		assert.Equal(t, "UserController", d.Name)
		assert.Equal(t, KindClass, d.Kind)
	}
}

func TestExtract_FeignClientParams(t *testing.T) {
	d := ex(t, `@FeignClient(name = "user-service", path = "/api/user")
public interface UserClient extends IUserController {
}`)
	assert.True(t, d.FeignClient)
	assert.Equal(t, "user-service", d.ClientName)
	assert.Equal(t, "/api/user", d.ClientBase)
	assert.Equal(t, "UserClient", d.Name)
	assert.Equal(t, KindInterface, d.Kind)
	assert.Equal(t, "IUserController", d.Extends)
}

func TestExtract_FeignClientMissingParams(t *testing.T) {
	d := ex(t, "@FeignClient(name = \"billing\")\ninterface BillingClient {\n}\n")
	assert.True(t, d.FeignClient)
	assert.Equal(t, "billing", d.ClientName)
	assert.Empty(t, d.ClientBase)

	d = ex(t, "@FeignClient\ninterface BareClient {\n}\n")
	assert.True(t, d.FeignClient)
	assert.Empty(t, d.ClientName)
	assert.Empty(t, d.ClientBase)
}

func TestExtract_ClassImplements(t *testing.T) {
	d := ex(t, "public class UserController implements IUserController {\n}\n")
	assert.Equal(t, "UserController", d.Name)
	assert.Equal(t, KindClass, d.Kind)
	assert.Equal(t, "IUserController", d.Implements)
}

func TestExtract_PlainDeclarations(t *testing.T) {
	d := ex(t, "class Standalone {\n}\n")
	assert.Equal(t, "Standalone", d.Name)
	assert.Equal(t, KindClass, d.Kind)
	assert.Empty(t, d.Implements)

	d = ex(t, "public interface Api {\n}\n")
	assert.Equal(t, "Api", d.Name)
	assert.Equal(t, KindInterface, d.Kind)
	assert.Empty(t, d.Extends)
}

func TestExtract_NoDeclaration(t *testing.T) {
	d := ex(t, "// just a comment\nint x = 1;\n")
	assert.Empty(t, d.Name)
}

func TestExtract_VerbMappings(t *testing.T) {
	tests := []struct {
		annotation string
		verb       string
	}{
		{`@GetMapping("/a")`, "GET"},
		{`@PostMapping("/a")`, "POST"},
		{`@PutMapping("/a")`, "PUT"},
		{`@DeleteMapping("/a")`, "DELETE"},
		{`@PatchMapping("/a")`, "PATCH"},
	}
	for _, tt := range tests {
		d := ex(t, "class C {\n"+tt.annotation+"\nvoid handle() {}\n}\n")
		require.Len(t, d.Methods, 1, tt.annotation)
		require.NotNil(t, d.Methods[0].Mapping)
		assert.Equal(t, tt.verb, d.Methods[0].Mapping.Verb)
		assert.Equal(t, "/a", d.Methods[0].Mapping.Path)
	}
}

func TestExtract_RequestMappingVerb(t *testing.T) {
	d := ex(t, "class C {\n@RequestMapping(value = \"/a\", method = RequestMethod.POST)\nvoid handle() {}\n}\n")
	require.Len(t, d.Methods, 1)
	assert.Equal(t, "POST", d.Methods[0].Mapping.Verb)
	assert.Equal(t, "/a", d.Methods[0].Mapping.Path)
}

func TestExtract_RequestMappingVerbSentinel(t *testing.T) {
	d := ex(t, "class C {\n@RequestMapping(\"/a\")\nvoid handle() {}\n}\n")
	require.Len(t, d.Methods, 1)
	assert.Equal(t, VerbRequest, d.Methods[0].Mapping.Verb)
}

func TestExtract_PathFallbackOrder(t *testing.T) {
	tests := []struct {
		name string
		line string
		path string
	}{
		{"bare string", `@GetMapping("/bare")`, "/bare"},
		{"value attribute", `@GetMapping(value = "/val")`, "/val"},
		{"path attribute", `@GetMapping(path = "/pat")`, "/pat"},
		{"bare wins over value", `@RequestMapping("/bare", value = "/val")`, "/bare"},
		{"value wins over path", `@GetMapping(value = "/val", path = "/pat")`, "/val"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ex(t, "class C {\n"+tt.line+"\nvoid handle() {}\n}\n")
			require.Len(t, d.Methods, 1)
			assert.Equal(t, tt.path, d.Methods[0].Mapping.Path)
		})
	}
}

func TestExtract_BareAnnotationEmptyFragment(t *testing.T) {
	// No parenthesis group at all: the fragment is the empty string, which
	// still participates in concatenation — distinct from no annotation.
	d := ex(t, "class C {\n@GetMapping\nvoid handle() {}\n}\n")
	require.Len(t, d.Methods, 1)
	require.NotNil(t, d.Methods[0].Mapping)
	assert.Equal(t, "", d.Methods[0].Mapping.Path)
	assert.Equal(t, "GET", d.Methods[0].Mapping.Verb)
}

func TestExtract_TypeLevelMapping(t *testing.T) {
	d := ex(t, `@RestController
@RequestMapping("/api/user")
public class UserController {
}`)
	require.NotNil(t, d.TypeMapping)
	assert.Equal(t, "/api/user", d.TypeMapping.Path)
}

func TestExtract_TypeLevelMappingOnlyFirst(t *testing.T) {
	d := ex(t, "@RequestMapping(\"/first\")\n@RequestMapping(\"/second\")\nclass C {\n}\n")
	require.NotNil(t, d.TypeMapping)
	assert.Equal(t, "/first", d.TypeMapping.Path)
}

func TestExtract_MethodAfterDeclarationIsNotTypeLevel(t *testing.T) {
	d := ex(t, "class C {\n@GetMapping(\"/m\")\nvoid handle() {}\n}\n")
	assert.Nil(t, d.TypeMapping)
	require.Len(t, d.Methods, 1)
}

func TestExtract_PendingAnnotationConsumedOnce(t *testing.T) {
	d := ex(t, `class C {
@GetMapping("/one")
void first() {}
@Override
void second() {}
}`)
	require.Len(t, d.Methods, 2)
	assert.Equal(t, "first", d.Methods[0].Name)
	assert.Equal(t, 3, d.Methods[0].Line)
	require.NotNil(t, d.Methods[0].Mapping)
	assert.False(t, d.Methods[0].Override)

	assert.Equal(t, "second", d.Methods[1].Name)
	assert.Equal(t, 5, d.Methods[1].Line)
	assert.Nil(t, d.Methods[1].Mapping)
	assert.True(t, d.Methods[1].Override)
}

func TestExtract_PendingCarriesAcrossBlankLines(t *testing.T) {
	d := ex(t, "class C {\n@GetMapping(\"/x\")\n\n\nvoid late() {}\n}\n")
	require.Len(t, d.Methods, 1)
	assert.Equal(t, "late", d.Methods[0].Name)
	assert.Equal(t, 5, d.Methods[0].Line)
	require.NotNil(t, d.Methods[0].Mapping)
}

func TestExtract_OverrideAndAnnotation(t *testing.T) {
	d := ex(t, "class C {\n@Override\n@GetMapping(\"/x\")\nvoid both() {}\n}\n")
	require.Len(t, d.Methods, 1)
	assert.True(t, d.Methods[0].Override)
	require.NotNil(t, d.Methods[0].Mapping)
	assert.Equal(t, "/x", d.Methods[0].Mapping.Path)
}

func TestExtract_KeywordsNotMethods(t *testing.T) {
	d := ex(t, `class C {
@GetMapping("/x")
if(ready) {
while(true) {
void handle() {}
}`)
	require.Len(t, d.Methods, 1)
	assert.Equal(t, "handle", d.Methods[0].Name)
	assert.Equal(t, 5, d.Methods[0].Line)
}

func TestExtract_AnnotationLineIsNotAMethod(t *testing.T) {
	// @SuppressWarnings("x") contains identifier( but is still an annotation.
	d := ex(t, "class C {\n@Override\n@SuppressWarnings(\"unchecked\")\nvoid real() {}\n}\n")
	require.Len(t, d.Methods, 1)
	assert.Equal(t, "real", d.Methods[0].Name)
	assert.True(t, d.Methods[0].Override)
}

func TestExtract_MultilineAnnotationProducesEmptyFragment(t *testing.T) {
	// Annotations spanning lines are unsupported: the opening line parses as
	// a bare annotation with an empty fragment.
	d := ex(t, "class C {\n@GetMapping(\n\"/split\")\nvoid handle() {}\n}\n")
	require.Len(t, d.Methods, 1)
	require.NotNil(t, d.Methods[0].Mapping)
	assert.Equal(t, "", d.Methods[0].Mapping.Path)
}

func TestExtract_MethodWithoutPendingStateIgnored(t *testing.T) {
	d := ex(t, "class C {\nvoid plain() {}\n}\n")
	assert.Empty(t, d.Methods)
}

func TestExtract_CommentLinesIgnored(t *testing.T) {
	d := ex(t, `/**
 * This class handles user routing.
 */
@RequestMapping("/api/user")
// @GetMapping("/disabled")
public class UserController {
}`)
	assert.Equal(t, "UserController", d.Name)
	require.NotNil(t, d.TypeMapping)
	assert.Equal(t, "/api/user", d.TypeMapping.Path)
	assert.Empty(t, d.Methods)
}

func TestExtract_OversizedLineTreatedAsUnreadable(t *testing.T) {
	// A line beyond the scanner's buffer cap stops scanning mid-file; the
	// whole file is dropped instead of being extracted partially.
	long := strings.Repeat("x", 2*1024*1024)
	d := Extract("/src/Generated.java", []byte("class Generated {\n"+long+"\n}\n"))
	assert.Nil(t, d)
}

func TestExtract_FullController(t *testing.T) {
	d := ex(t, `package com.example;

@RestController
@RequestMapping("/api/product")
public class ProductController {

    @GetMapping("/list")
    public List<Product> list() {
        return service.findAll();
    }

    @PostMapping(value = "/create")
    public Product create(@RequestBody Product p) {
        return service.save(p);
    }
}`)
	assert.True(t, d.EntryPoint)
	assert.Equal(t, "ProductController", d.Name)
	require.NotNil(t, d.TypeMapping)
	assert.Equal(t, "/api/product", d.TypeMapping.Path)
	require.Len(t, d.Methods, 2)
	assert.Equal(t, "list", d.Methods[0].Name)
	assert.Equal(t, 8, d.Methods[0].Line)
	assert.Equal(t, "GET", d.Methods[0].Mapping.Verb)
	assert.Equal(t, "create", d.Methods[1].Name)
	assert.Equal(t, "POST", d.Methods[1].Mapping.Verb)
	assert.Equal(t, "/create", d.Methods[1].Mapping.Path)
}
