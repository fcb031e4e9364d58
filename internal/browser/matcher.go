package browser

import (
	"fmt"
	"regexp"
	"strings"
)

// compilePattern translates a URL glob into an anchored regular expression.
// The pattern language is deliberately small and deterministic:
//
//	**  matches any run of characters, including '/'
//	*   matches any run of characters except '/'
//
// Everything else matches literally and the whole URL must match, so
// "**/v1alpha/sources*" matches "http://host:4173/v1alpha/sources?page=2"
// but not "http://host:4173/v1alpha/sources/1/files".
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty URL pattern")
	}

	var expr strings.Builder
	expr.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		switch {
		case strings.HasPrefix(pattern[i:], "**"):
			expr.WriteString(".*")
			i++
		case pattern[i] == '*':
			expr.WriteString("[^/]*")
		default:
			expr.WriteString(regexp.QuoteMeta(string(pattern[i])))
		}
	}
	expr.WriteString("$")

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("invalid URL pattern %q: %w", pattern, err)
	}
	return re, nil
}
