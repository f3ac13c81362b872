package handler

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError maps form fields to their messages.
type ValidationError url.Values

func NewValidationError() ValidationError {
	return make(ValidationError)
}

func (e ValidationError) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if msgs := e[field]; len(msgs) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", field, msgs[0]))
		}
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e ValidationError) Add(field, message string) { url.Values(e).Add(field, message) }

// Get returns the first message for field.
func (e ValidationError) Get(field string) string { return url.Values(e).Get(field) }

func (e ValidationError) Has(field string) bool { return len(e[field]) > 0 }
