package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"api-test-generator/internal/types"
)

const (
	// indent is the statement indentation inside the test method
	indent = "        "
	// chained is the indentation of a chained call under given()/when()/then()
	chained = indent + "    "
	// continued lines up concatenated body literals under the opening quote
	continued = indent + "           "
)

// FragmentKind names the facet a Fragment was built from
type FragmentKind int

const (
	FragmentOpen FragmentKind = iota
	FragmentAuth
	FragmentHeaders
	FragmentQueryParams
	FragmentBody
	FragmentInvocation
	FragmentAssertions
	FragmentExtraction
)

var fragmentNames = map[FragmentKind]string{
	FragmentOpen:        "open",
	FragmentAuth:        "auth",
	FragmentHeaders:     "headers",
	FragmentQueryParams: "queryParams",
	FragmentBody:        "body",
	FragmentInvocation:  "invocation",
	FragmentAssertions:  "assertions",
	FragmentExtraction:  "extraction",
}

func (k FragmentKind) String() string {
	if name, ok := fragmentNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FragmentKind(%d)", int(k))
}

// Fragment is a run of already indented lines of the request chain
type Fragment struct {
	Kind  FragmentKind
	Lines []string
}

// Empty reports whether the fragment contributes nothing
func (f Fragment) Empty() bool {
	return len(f.Lines) == 0
}

// String renders the fragment with a newline after every line
func (f Fragment) String() string {
	var sb strings.Builder
	for _, line := range f.Lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func call(name string, args ...string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = Quote(arg)
	}
	return chained + "." + name + "(" + strings.Join(quoted, ", ") + ")"
}

// BuildAuth renders the authorization variant. None, nil and unknown variants
// produce an empty fragment.
func BuildAuth(auth *types.Authorization) Fragment {
	f := Fragment{Kind: FragmentAuth}
	switch auth.Kind() {
	case types.AuthBasic:
		f.Lines = append(f.Lines, chained+".auth().basic("+Quote(auth.Username)+", "+Quote(auth.Password)+")")
	case types.AuthBearer:
		f.Lines = append(f.Lines, call("header", "Authorization", "Bearer "+auth.Token))
	case types.AuthAPIKey:
		f.Lines = append(f.Lines, call("header", auth.KeyName, auth.KeyValue))
	}
	return f
}

// BuildHeaders renders one header call per entry, in order
func BuildHeaders(headers types.Pairs) Fragment {
	return buildPairs(FragmentHeaders, "header", headers)
}

// BuildQueryParams renders one queryParam call per entry, in order
func BuildQueryParams(params types.Pairs) Fragment {
	return buildPairs(FragmentQueryParams, "queryParam", params)
}

func buildPairs(kind FragmentKind, method string, pairs types.Pairs) Fragment {
	f := Fragment{Kind: kind}
	for _, p := range pairs {
		f.Lines = append(f.Lines, call(method, p.Name, p.Value))
	}
	return f
}

// BuildBody renders the request body. Valid JSON is re-indented with four
// spaces and emitted as one concatenated literal per line; anything else is
// emitted as a single literal of the raw text.
func BuildBody(body string) Fragment {
	f := Fragment{Kind: FragmentBody}

	src := bytes.TrimSpace([]byte(body))
	var formatted bytes.Buffer
	if !json.Valid(src) || json.Indent(&formatted, src, "", "    ") != nil {
		f.Lines = append(f.Lines, call("body", body))
		return f
	}

	lines := strings.Split(formatted.String(), "\n")
	if len(lines) == 1 {
		f.Lines = append(f.Lines, call("body", lines[0]))
		return f
	}

	for i, line := range lines {
		switch {
		case i == 0:
			f.Lines = append(f.Lines, chained+`.body("`+Escape(line)+`\n" +`)
		case i == len(lines)-1:
			f.Lines = append(f.Lines, continued+`"`+Escape(line)+`")`)
		default:
			f.Lines = append(f.Lines, continued+`"`+Escape(line)+`\n" +`)
		}
	}
	return f
}
