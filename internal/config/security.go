package config

import (
	"regexp"
	"strings"
)

// SensitivePattern represents a pattern that might indicate sensitive data.
type SensitivePattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// sensitivePatterns are matched line by line against configuration source.
// They favour false positives; a match only produces a warning.
var sensitivePatterns = []SensitivePattern{
	{Name: "API Key", Pattern: regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*=\s*['"][a-zA-Z0-9_-]{15,}['"]`)},
	{Name: "Token", Pattern: regexp.MustCompile(`(?i)(token|auth[_-]?token|access[_-]?token|bearer)\s*=\s*['"][a-zA-Z0-9_-]{15,}['"]`)},
	{Name: "Password", Pattern: regexp.MustCompile(`(?i)(password|passwd|pwd)\s*=\s*['"].+['"]`)},
	{Name: "Secret", Pattern: regexp.MustCompile(`(?i)(secret|secret[_-]?key|private[_-]?key)\s*=\s*['"][a-zA-Z0-9_-]{15,}['"]`)},
	{Name: "GitHub Token", Pattern: regexp.MustCompile(`gh[ps]_[a-zA-Z0-9]{36,}`)},
}

// sensitiveNameFragments mark variable names whose values are not echoed in
// the shell banner.
var sensitiveNameFragments = []string{"password", "passwd", "secret", "token", "apikey", "api_key", "private_key", "credential"}

// SensitiveDataFinding represents a detected sensitive data instance.
type SensitiveDataFinding struct {
	PatternName string
	Line        int
	Preview     string // redacted
}

// DetectSensitiveData scans configuration content for hardcoded secrets.
//
// Each line is tested against every pattern, so one line can produce more
// than one finding. Line numbers are 1-based and Preview never contains
// the matched value.
func DetectSensitiveData(content string) []SensitiveDataFinding {
	var findings []SensitiveDataFinding
	for n, line := range strings.Split(content, "\n") {
		for _, p := range sensitivePatterns {
			if p.Pattern.MatchString(line) {
				findings = append(findings, SensitiveDataFinding{
					PatternName: p.Name,
					Line:        n + 1,
					Preview:     redactSensitiveValue(line),
				})
			}
		}
	}
	return findings
}

// SensitiveName reports whether a variable name looks like it holds a secret.
func SensitiveName(name string) bool {
	lower := strings.ToLower(name)
	for _, frag := range sensitiveNameFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// redactSensitiveValue keeps the key of an assignment and hides the value.
func redactSensitiveValue(line string) string {
	eq := strings.Index(line, "=")
	if eq == -1 {
		if len(line) > 30 {
			return line[:30] + "... [REDACTED]"
		}
		return line + " [REDACTED]"
	}
	return strings.TrimSpace(line[:eq]) + " = [REDACTED]"
}
