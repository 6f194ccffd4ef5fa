package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// CRLF converts any mix of line endings to CRLF, which is what the POST
// mime-types application/x-www-form-urlencoded and multipart/form-data
// expect for textarea content. Leading blank lines are stripped; internal
// and trailing line breaks are converted, never collapsed.
func CRLF(text string) string {
	out := strings.ReplaceAll(text, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "\n")
	out = strings.ReplaceAll(out, "\n", "\r\n")
	for strings.HasPrefix(out, "\r\n") {
		out = out[2:]
	}
	return out
}
