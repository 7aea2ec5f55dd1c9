// Package render turns the assembled render context into typesettable LaTeX
// and optionally drives the external compiler. Failures here are reported
// upward and never retried.
package render

import (
	"fmt"
	"sort"
	"strings"
)

// escapes lists the LaTeX-special characters and their replacements. The
// backslash must come first to avoid double-escaping.
var escapes = [][2]string{
	{"\\", `\textbackslash{}`},
	{"_", `\_`},
	{"%", `\%`},
	{"&", `\&`},
	{"#", `\#`},
	{"$", `\$`},
	{"{", `\{`},
	{"}", `\}`},
	{"~", `\textasciitilde{}`},
	{"^", `\textasciicircum{}`},
	{"<", `\textless{}`},
	{">", `\textgreater{}`},
}

// Escape sanitizes text for LaTeX by escaping special characters and turning
// blank lines into paragraph breaks.
func Escape(text string) string {
	for _, pair := range escapes {
		text = strings.ReplaceAll(text, pair[0], pair[1])
	}

	return strings.ReplaceAll(text, "\n\n", "\n\\par\n")
}

// displayName renders the free-form name header, which is either a string or
// a sequence of name parts.
func displayName(value any) string {
	switch v := value.(type) {
	case string:
		return Escape(v)
	case []string:
		return Escape(strings.Join(v, " "))
	case []any:
		parts := make([]string, 0, len(v))
		for _, part := range v {
			parts = append(parts, fmt.Sprint(part))
		}
		return Escape(strings.Join(parts, " "))
	default:
		return Escape(fmt.Sprint(value))
	}
}

// headerTags expands the free-form header mapping into one LaTeX command per
// tag, e.g. \email{...} or \name{first}{last}.
func headerTags(headers map[string]any) string {
	if len(headers) == 0 {
		return ""
	}

	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, headerTag(key, headers[key]))
	}
	return strings.Join(lines, "\n")
}

func headerTag(tag string, value any) string {
	switch v := value.(type) {
	case []string:
		var b strings.Builder
		b.WriteString("\\" + tag)
		for _, item := range v {
			b.WriteString("{" + Escape(item) + "}")
		}
		return b.String()
	case []any:
		var b strings.Builder
		b.WriteString("\\" + tag)
		for _, item := range v {
			b.WriteString("{" + Escape(fmt.Sprint(item)) + "}")
		}
		return b.String()
	default:
		return "\\" + tag + "{" + Escape(fmt.Sprint(value)) + "}"
	}
}

// dateRange typesets a one- or two-element date range.
func dateRange(date []string) string {
	switch len(date) {
	case 0:
		return ""
	case 1:
		return Escape(date[0])
	default:
		return Escape(date[0]) + "\\textemdash{}" + Escape(date[1])
	}
}

func joinItems(items []string) string {
	escaped := make([]string, 0, len(items))
	for _, item := range items {
		escaped = append(escaped, Escape(item))
	}
	return strings.Join(escaped, ", ")
}
