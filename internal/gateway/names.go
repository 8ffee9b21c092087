package gateway

import (
	"fmt"
	"regexp"
	"strings"
)

var namePlaceholderRe = regexp.MustCompile(`\{(\w+)\}`)

// NameParser converts between resource names and their variables for a
// google.api.resource pattern such as projects/{project}/documents/{document}.
type NameParser struct {
	pattern string
	keys    []string
	re      *regexp.Regexp
}

func NewNameParser(pattern string) (*NameParser, error) {
	expr, err := PatternToRegexp(pattern)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile name pattern %q: %w", pattern, err)
	}
	var keys []string
	for _, m := range namePlaceholderRe.FindAllStringSubmatch(pattern, -1) {
		keys = append(keys, m[1])
	}
	return &NameParser{pattern: pattern, keys: keys, re: re}, nil
}

// MustNameParser is NewNameParser for patterns known at compile time.
func MustNameParser(pattern string) *NameParser {
	p, err := NewNameParser(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// PatternToRegexp returns an anchored expression with one named capture
// group per placeholder. Literal text is quoted.
func PatternToRegexp(pattern string) (string, error) {
	var (
		b    strings.Builder
		seen = map[string]bool{}
		last int
	)
	b.WriteString("^")
	for _, m := range namePlaceholderRe.FindAllStringSubmatchIndex(pattern, -1) {
		name := pattern[m[2]:m[3]]
		if seen[name] {
			return "", fmt.Errorf("name pattern %q repeats variable %q", pattern, name)
		}
		seen[name] = true
		b.WriteString(regexp.QuoteMeta(pattern[last:m[0]]))
		b.WriteString("(?P<" + name + ">[^/]+)")
		last = m[1]
	}
	b.WriteString(regexp.QuoteMeta(pattern[last:]))
	b.WriteString("$")
	return b.String(), nil
}

func (p *NameParser) Pattern() string { return p.pattern }

// Keys lists the pattern variables in order of appearance.
func (p *NameParser) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Compile substitutes values into the pattern. Every variable must be set.
func (p *NameParser) Compile(values map[string]string) (string, error) {
	var missing string
	name := namePlaceholderRe.ReplaceAllStringFunc(p.pattern, func(token string) string {
		key := token[1 : len(token)-1]
		v, ok := values[key]
		if !ok && missing == "" {
			missing = key
		}
		return v
	})
	if missing != "" {
		return "", fmt.Errorf("%w: %s in %q", ErrMissingPathParameter, missing, p.pattern)
	}
	return name, nil
}

// Parse extracts the variables from a concrete resource name.
func (p *NameParser) Parse(name string) (map[string]string, error) {
	m := p.re.FindStringSubmatch(name)
	if m == nil {
		return nil, fmt.Errorf("%w: %q is not a %s name", ErrNameParseMismatch, name, p.pattern)
	}
	out := make(map[string]string, len(p.keys))
	for i, group := range p.re.SubexpNames() {
		if group != "" {
			out[group] = m[i]
		}
	}
	return out, nil
}
