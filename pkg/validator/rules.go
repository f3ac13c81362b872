package validator

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Required fails for empty or whitespace-only strings.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "is required"},
	}
}

// MaxLen counts runes, not bytes.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters", max)},
	}
}

// MatchesRegex fails when value does not match re. description completes
// the sentence "must contain ...".
func MatchesRegex(field, value string, re *regexp.Regexp, description string) Rule {
	return Rule{
		Check: func() bool { return re.MatchString(value) },
		Error: ValidationError{Field: field, Message: "must contain " + description},
	}
}

// ValidURLWithScheme accepts absolute URLs with a host and one of schemes.
func ValidURLWithScheme(field, value string, schemes ...string) Rule {
	return Rule{
		Check: func() bool {
			u, err := url.Parse(value)
			if err != nil || u.Host == "" {
				return false
			}
			return slices.Contains(schemes, strings.ToLower(u.Scheme))
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a valid " + strings.Join(schemes, " or ") + " URL",
		},
	}
}

// Between accepts min <= value <= max.
func Between[T Numeric](field string, value, min, max T) Rule {
	return Rule{
		Check: func() bool { return value >= min && value <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be between %v and %v", min, max)},
	}
}

// Custom wraps an arbitrary predicate.
func Custom(field string, check func() bool, message string) Rule {
	return Rule{
		Check: check,
		Error: ValidationError{Field: field, Message: message},
	}
}
