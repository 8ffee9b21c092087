package gateway

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var pathParameterRe = regexp.MustCompile(`\{([^}]+)\}`)

// ReplacePathParameters substitutes every {field} placeholder in path with
// the string found at that dot path in params. A placeholder may carry a
// pattern ({name=projects/*}); only the part before '=' names the field.
//
// All placeholders are resolved before anything is consumed, so a failure
// leaves no partially reduced parameter object behind. The returned map holds
// the fields that were not used by the path; params is never modified.
func ReplacePathParameters(path string, params Params) (string, Params, error) {
	matches := pathParameterRe.FindAllStringSubmatchIndex(path, -1)
	if len(matches) == 0 {
		return path, params, nil
	}

	var (
		b        strings.Builder
		consumed = make([]string, 0, len(matches))
		last     int
	)
	for _, m := range matches {
		field, _, _ := strings.Cut(path[m[2]:m[3]], "=")
		value := Get(params, field)
		if value == nil {
			return "", nil, fmt.Errorf("%w: %s", ErrMissingPathParameter, field)
		}
		s, ok := value.(string)
		if !ok {
			return "", nil, fmt.Errorf(
				"%w: %q must be a string, received %v (%T)",
				ErrInvalidPathParameterType,
				field,
				value,
				value,
			)
		}
		b.WriteString(path[last:m[0]])
		b.WriteString(escapePathValue(s))
		last = m[1]
		consumed = append(consumed, field)
	}
	b.WriteString(path[last:])

	remaining := params
	for _, field := range consumed {
		remaining = Unset(remaining, field)
	}
	return b.String(), remaining, nil
}

// escapePathValue escapes each segment but keeps slashes, so multi segment
// values such as images/abc stay readable in the path.
func escapePathValue(value string) string {
	segments := strings.Split(value, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

func removeLeadingSlash(path string) string {
	return strings.TrimLeft(path, "/")
}

func addTrailingSlash(path string) string {
	if strings.HasSuffix(path, "/") {
		return path
	}
	return path + "/"
}

// resolveURL joins the expanded path onto the base path. The leading slash
// is dropped and a trailing slash added to the base, otherwise reference
// resolution would replace the last segment of the base path.
func resolveURL(cfg RequestConfig, path string) (*url.URL, error) {
	if base := strings.TrimSpace(cfg.BasePath); base != "" {
		baseURL, err := url.Parse(addTrailingSlash(base))
		if err != nil {
			return nil, fmt.Errorf("parse base path: %w", err)
		}
		ref, err := url.Parse("./" + removeLeadingSlash(path))
		if err != nil {
			return nil, fmt.Errorf("parse path %q: %w", path, err)
		}
		return baseURL.ResolveReference(ref), nil
	}

	refPath := path
	if !strings.HasPrefix(refPath, "/") {
		refPath = "./" + refPath
	}
	ref, err := url.Parse(refPath)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	loc := strings.TrimSpace(cfg.Location)
	if loc == "" {
		return ref, nil
	}
	locURL, err := url.Parse(loc)
	if err != nil {
		return nil, fmt.Errorf("parse location: %w", err)
	}
	return locURL.ResolveReference(ref), nil
}
