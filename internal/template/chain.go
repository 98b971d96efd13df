package template

import (
	"fmt"
	"strings"

	"api-test-generator/internal/types"
)

// Plan lays out the fragments of the request chain in emission order.
// Optional facets that are absent are left out; the relative order of the
// ones present never changes.
func Plan(desc types.RequestDescription) []Fragment {
	plan := []Fragment{{
		Kind: FragmentOpen,
		Lines: []string{
			indent + "Response response = given()",
			chained + `.contentType("application/json")`,
		},
	}}

	optional := []Fragment{
		BuildAuth(desc.Authorization),
		BuildHeaders(desc.Headers),
		BuildQueryParams(desc.QueryParams),
	}
	if desc.RequestBody != "" {
		optional = append(optional, BuildBody(desc.RequestBody))
	}
	for _, f := range optional {
		if !f.Empty() {
			plan = append(plan, f)
		}
	}

	plan = append(plan,
		Fragment{
			Kind: FragmentInvocation,
			Lines: []string{
				indent + ".when()",
				chained + "." + strings.ToLower(desc.Method) + "(" + Quote(desc.Endpoint) + ")",
			},
		},
		buildAssertions(desc),
		Fragment{
			Kind: FragmentExtraction,
			Lines: []string{
				chained + ".extract().response();",
				"",
				indent + `System.out.println("Response Status: " + response.getStatusCode());`,
				indent + `System.out.println("Response Body: " + response.getBody().asString());`,
			},
		},
	)
	return plan
}

func buildAssertions(desc types.RequestDescription) Fragment {
	f := Fragment{
		Kind: FragmentAssertions,
		Lines: []string{
			indent + ".then()",
			fmt.Sprintf("%s.statusCode(%d)", chained, desc.ExpectedStatus),
		},
	}
	if desc.ResponseTimeThreshold != nil {
		f.Lines = append(f.Lines, fmt.Sprintf("%s.time(lessThan(%dL))", chained, *desc.ResponseTimeThreshold))
	}
	if desc.ValidateSchema && desc.SchemaFile != "" {
		f.Lines = append(f.Lines, chained+".body(matchesJsonSchema("+Quote(desc.SchemaFile)+"))")
	}
	return f
}

// BuildChain renders the full RestAssured statement for the test method body
func BuildChain(desc types.RequestDescription) string {
	var sb strings.Builder
	for _, f := range Plan(desc) {
		sb.WriteString(f.String())
	}
	return sb.String()
}
