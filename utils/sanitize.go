package utils

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var ErrInvalidEmail = errors.New("invalid email")

var (
	markupTag    = regexp.MustCompile(`<\s*[a-zA-Z/!?][^>]*>`)
	scriptScheme = regexp.MustCompile(`(?i)(javascript|vbscript)\s*:`)
	eventHandler = regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)
	sqlMeta      = strings.NewReplacer(";", "", "--", "", "/*", "", "*/", "", "\\", "", "`", "", "'", "", "\"", "")
)

// SanitizeString strips markup and characters that could change the structure of a
// query or a rendered page. Newlines and tabs survive, other control characters do not.
func SanitizeString(value string) string {
	s := norm.NFC.String(value)
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	s = markupTag.ReplaceAllString(s, "")
	s = scriptScheme.ReplaceAllString(s, "")
	s = eventHandler.ReplaceAllString(s, "")
	s = strings.NewReplacer("<", "", ">", "").Replace(s)

	// removing one sequence can join the halves of another ("-;-")
	for {
		next := sqlMeta.Replace(s)
		if next == s {
			break
		}
		s = next
	}

	return strings.TrimSpace(s)
}

// SanitizeEmail trims and lowercases an address and checks that it parses as a
// single mailbox. A display name, if present, is dropped.
func SanitizeEmail(value string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(norm.NFC.String(value)))
	if s == "" {
		return "", fmt.Errorf("%w: email cannot be empty", ErrInvalidEmail)
	}

	addr, err := mail.ParseAddress(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	return addr.Address, nil
}
