package template

import (
	"net/url"
	"strings"
)

// ClassSuffix ends every derived class name and is the whole name when
// nothing usable can be taken from the endpoint.
const ClassSuffix = "ApiTest"

// DeriveClassName builds a Java class name from the last segment of an
// absolute URL's percent-encoded path, e.g. "https://api.example.com/users"
// -> "UsersApiTest". Escapes stay in the segment, so "search%20all" becomes
// "Search20allApiTest" and an encoded slash does not split it.
func DeriveClassName(endpoint string) string {
	path, ok := encodedPath(endpoint)
	if !ok {
		return ClassSuffix
	}

	var segments []string
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			segments = append(segments, part)
		}
	}
	if len(segments) == 0 {
		return ClassSuffix
	}

	last := stripNonAlnum(segments[len(segments)-1])
	if last == "" {
		return ClassSuffix
	}
	return strings.ToUpper(last[:1]) + last[1:] + ClassSuffix
}

// encodedPath returns the path of an absolute URL in its percent-encoded
// form. A malformed escape such as "%zz" is kept as written.
func encodedPath(endpoint string) (string, bool) {
	u, err := url.Parse(endpoint)
	if err == nil {
		if u.Scheme == "" || u.Host == "" {
			return "", false
		}
		return u.EscapedPath(), true
	}

	// protect every '%' so the decoded path is the text as written
	u, err = url.Parse(strings.ReplaceAll(endpoint, "%", "%25"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return u.Path, true
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}
