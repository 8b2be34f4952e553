package render

import (
	"errors"
	"fmt"
	"regexp"
)

var ErrNoFence = errors.New("no fenced block found")

func fencePattern(lang string) *regexp.Regexp {
	return regexp.MustCompile("(?s)```" + regexp.QuoteMeta(lang) + "\\s*?\n(.*?)\n\\s*```")
}

// ExtractFence returns the body of the first ```<lang> block in source.
func ExtractFence(source, lang string) (string, error) {
	m := fencePattern(lang).FindStringSubmatch(source)
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrNoFence, lang)
	}
	return m[1], nil
}

// ExtractFences returns the bodies of every ```<lang> block in source, in order.
func ExtractFences(source, lang string) []string {
	var out []string
	for _, m := range fencePattern(lang).FindAllStringSubmatch(source, -1) {
		out = append(out, m[1])
	}
	return out
}
