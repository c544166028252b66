package bmrs

import (
	"fmt"
	"net/url"
	"regexp"

	"elexon/internal/errs"
)

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// ExpandPath substitutes {name} placeholders of a path template with the
// escaped first value of the matching query parameter.
func ExpandPath(template string, values url.Values) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		v := values.Get(name)
		if v == "" {
			missing = append(missing, name)
			return m
		}
		return url.PathEscape(v)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: path %s needs %v", errs.ErrMissingParams, template, missing)
	}
	return out, nil
}
