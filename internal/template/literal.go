package template

import "strings"

var literalReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
)

// Escape encodes s for embedding between the quotes of a Java string literal.
// Backslashes, double quotes, line feeds and carriage returns are escaped in
// a single pass, so the result must not be escaped again.
func Escape(s string) string {
	return literalReplacer.Replace(s)
}

// Quote returns s as a complete Java string literal
func Quote(s string) string {
	return `"` + Escape(s) + `"`
}
