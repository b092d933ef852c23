package catalogue

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Sentinel errors for empty identifier input.
var (
	ErrEmptyDOI   = errors.New("Cannot parse DOI: no value provided")
	ErrEmptyORCID = errors.New("Cannot parse ORCID: no value provided")
	ErrEmptyISBN  = errors.New("Cannot parse ISBN: no value provided")
	ErrEmptyROR   = errors.New("Cannot parse ROR ID: no value provided")
)

// IdentifierKind names an identifier scheme in error messages.
type IdentifierKind string

const (
	KindDOI   IdentifierKind = "DOI"
	KindORCID IdentifierKind = "ORCID"
	KindISBN  IdentifierKind = "ISBN"
	KindROR   IdentifierKind = "ROR ID"
)

// ParseError reports malformed identifier input.
type ParseError struct {
	Kind  IdentifierKind
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s is not a validly formatted %s and will not be saved", e.Input, e.Kind)
}

// Each pattern captures the bare identifier; an optional resolver prefix is
// accepted in any case.
var (
	doiPattern   = regexp.MustCompile(`^(?i:(?:https?://)?(?:www\.)?(?:dx\.)?doi\.org/)?(10\.\d{4,9}/[-._;()/:a-zA-Z0-9<>+\[\]]+)$`)
	orcidPattern = regexp.MustCompile(`^(?i:(?:https?://)?(?:www\.)?orcid\.org/)?(0000-000(?:1-[5-9]|2-[0-9]|3-[0-4])\d{3}-\d{3}[\dX])$`)
	rorPattern   = regexp.MustCompile(`^(?i:(?:https?://)?(?:www\.)?ror\.org/)?(0[a-hjkmnp-z0-9]{6}\d{2})$`)
)

// ParseDOI validates input and standardizes it to "https://doi.org/10.…".
func ParseDOI(input string) (DOI, error) {
	if input == "" {
		return "", ErrEmptyDOI
	}
	m := doiPattern.FindStringSubmatch(input)
	if m == nil {
		return "", &ParseError{Kind: KindDOI, Input: input}
	}
	return DOI(DOIDomain + m[1]), nil
}

// ParseORCID validates input and standardizes it to "https://orcid.org/…".
func ParseORCID(input string) (ORCID, error) {
	if input == "" {
		return "", ErrEmptyORCID
	}
	m := orcidPattern.FindStringSubmatch(input)
	if m == nil {
		return "", &ParseError{Kind: KindORCID, Input: input}
	}
	return ORCID(ORCIDDomain + m[1]), nil
}

// ParseROR validates input and standardizes it to "https://ror.org/…".
func ParseROR(input string) (ROR, error) {
	if input == "" {
		return "", ErrEmptyROR
	}
	m := rorPattern.FindStringSubmatch(input)
	if m == nil {
		return "", &ParseError{Kind: KindROR, Input: input}
	}
	return ROR(RORDomain + m[1]), nil
}

// ParseISBN validates an ISBN-10 or ISBN-13 (hyphens and spaces ignored)
// by checksum and returns its 13-digit form.
func ParseISBN(input string) (ISBN, error) {
	if input == "" {
		return "", ErrEmptyISBN
	}
	digits := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, input)

	switch len(digits) {
	case 10:
		if !validISBN10(digits) {
			return "", &ParseError{Kind: KindISBN, Input: input}
		}
		return ISBN(isbn10To13(digits)), nil
	case 13:
		if !validISBN13(digits) {
			return "", &ParseError{Kind: KindISBN, Input: input}
		}
		return ISBN(digits), nil
	default:
		return "", &ParseError{Kind: KindISBN, Input: input}
	}
}

func validISBN10(s string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		c := s[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case (c == 'X' || c == 'x') && i == 9:
			v = 10
		default:
			return false
		}
		sum += v * (10 - i)
	}
	return sum%11 == 0
}

func validISBN13(s string) bool {
	if !strings.HasPrefix(s, "978") && !strings.HasPrefix(s, "979") {
		return false
	}
	sum := 0
	for i := 0; i < 13; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		v := int(c - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	return sum%10 == 0
}

func isbn10To13(s string) string {
	body := "978" + s[:9]
	sum := 0
	for i := 0; i < 12; i++ {
		v := int(body[i] - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	check := (10 - sum%10) % 10
	return body + string(rune('0'+check))
}
