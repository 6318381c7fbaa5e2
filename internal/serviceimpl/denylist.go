package serviceimpl

import (
	"regexp"
	"strings"

	"github.com/PayRam/go-dbclient/service"
)

type suspiciousPattern struct {
	name string
	re   *regexp.Regexp
}

// Raw statements matching any of these are refused before they reach the store
var suspiciousPatterns = []suspiciousPattern{
	{"stacked destructive statement", regexp.MustCompile(`(?i);\s*(DROP|DELETE|TRUNCATE|ALTER)\b`)},
	{"union select", regexp.MustCompile(`(?i)\bUNION\s+(ALL\s+)?SELECT\b`)},
	{"trailing line comment", regexp.MustCompile(`--[^\n]*\s*$`)},
	{"block comment", regexp.MustCompile(`(?s)/\*.*?\*/`)},
	{"procedure execution", regexp.MustCompile(`(?i)\bEXEC\s*\(`)},
	{"script tag", regexp.MustCompile(`(?i)<\s*script`)},
}

// CheckQuery screens a raw statement. This is a heuristic layered on top of
// parameter binding, not a security boundary: bound parameters remain the
// injection defense.
func CheckQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return service.NewValidationError("query", service.ErrInvalidValue, "query is empty")
	}
	for _, p := range suspiciousPatterns {
		if p.re.MatchString(query) {
			return service.NewValidationError("query", service.ErrSuspiciousQuery, "query rejected: %s", p.name)
		}
	}
	return nil
}
