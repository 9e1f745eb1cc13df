package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// checkPattern applies the router's pattern rules to a route path so a bad
// path is reported as a configuration error instead of failing when the
// application is built.
//
// Rules:
//   - every '{' opening a parameter is closed by a matching '}'
//   - parameter names are unique within the path
//   - a "{name:regexp}" parameter carries a valid regular expression
//   - a '*' wildcard is the last character of the path
func checkPattern(path string) error {
	seen := make(map[string]bool)
	rest := path
	for rest != "" {
		ps := strings.IndexByte(rest, '{')
		ws := strings.IndexByte(rest, '*')
		if ps < 0 && ws < 0 {
			return nil
		}
		if ws >= 0 && (ps < 0 || ws < ps) {
			if ws != len(rest)-1 {
				return errors.New("wildcard '*' must be the last character")
			}
			return nil
		}

		// Braces nest inside regular expressions.
		depth, end := 0, -1
		for i := ps; i < len(rest) && end < 0; i++ {
			switch rest[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					end = i
				}
			}
		}
		if end < 0 {
			return fmt.Errorf("parameter %q is missing its closing '}'", rest[ps:])
		}

		key, rexpat, isRegexp := strings.Cut(rest[ps+1:end], ":")
		if key == "" {
			return errors.New("parameter name must not be empty")
		}
		if seen[key] {
			return fmt.Errorf("duplicate parameter %q", key)
		}
		seen[key] = true
		if isRegexp {
			if _, err := regexp.Compile(rexpat); err != nil {
				return fmt.Errorf("parameter %q: invalid regular expression: %w", key, err)
			}
		}

		rest = rest[end+1:]
	}
	return nil
}
