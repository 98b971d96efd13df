// Package template renders a RequestDescription into a RestAssured/TestNG
// test class. Every function in it is pure: the same description always
// produces the same bytes.
package template

import (
	"strings"

	"api-test-generator/internal/types"
)

var baseImports = []string{
	"import io.restassured.RestAssured;",
	"import io.restassured.response.Response;",
	"import org.testng.annotations.Test;",
	"import static io.restassured.RestAssured.given;",
	"import static org.hamcrest.Matchers.*;",
}

// SchemaImport is only added when the description asks for schema validation
const SchemaImport = "import static io.restassured.module.jsv.JsonSchemaValidator.matchesJsonSchema;"

// Imports returns the import block lines for desc
func Imports(desc types.RequestDescription) []string {
	imports := append([]string(nil), baseImports...)
	if desc.ValidateSchema {
		imports = append(imports, SchemaImport)
	}
	return imports
}

// TestMethodName maps an HTTP method to the test method name, GET -> testGetRequest
func TestMethodName(method string) string {
	if method == "" {
		return "testRequest"
	}
	lower := strings.ToLower(method)
	return "test" + strings.ToUpper(lower[:1]) + lower[1:] + "Request"
}

// Render builds the generated unit without checking the description.
// Callers are expected to have run Preconditions or Validate first.
func Render(desc types.RequestDescription) types.GeneratedUnit {
	className := DeriveClassName(desc.Endpoint)

	var sb strings.Builder
	sb.WriteString(strings.Join(Imports(desc), "\n"))
	sb.WriteString("\n\n")
	sb.WriteString("public class " + className + " {\n\n")
	sb.WriteString("    @Test\n")
	sb.WriteString("    public void " + TestMethodName(desc.Method) + "() {\n")
	sb.WriteString(BuildChain(desc))
	sb.WriteString("    }\n")
	sb.WriteString("}\n")

	return types.GeneratedUnit{
		ClassName:  className,
		FileName:   className + ".java",
		SourceText: sb.String(),
	}
}

// Generate checks that the description carries every facet the template needs
// and renders it.
func Generate(desc types.RequestDescription) (types.GeneratedUnit, error) {
	if err := desc.Preconditions(); err != nil {
		return types.GeneratedUnit{}, &types.OpError{Op: "template.generate", Kind: types.KindInvalidRequest, Err: err}
	}
	return Render(desc), nil
}
