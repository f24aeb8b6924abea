package validate

import (
	"fmt"
	"strings"
	"time"
)

// Errors accumulates per-field validation messages.
type Errors map[string][]string

func New() Errors {
	return Errors{}
}

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Empty() bool {
	return len(e) == 0
}

// Required adds an error when the trimmed value is empty.
func (e Errors) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, "is required")
	}
}

func (e Errors) MaxLen(field, value string, max int) {
	if len(value) > max {
		e.Add(field, fmt.Sprintf("must not exceed %d characters", max))
	}
}

func (e Errors) MinInt(field string, value, min int64) {
	if value < min {
		e.Add(field, fmt.Sprintf("must be at least %d", min))
	}
}

// OneOf checks an enumerated integer value against the allowed set.
func (e Errors) OneOf(field string, value int, allowed ...int) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	e.Add(field, "is not a valid value")
}

// DateOrder requires end to be on or after start.
func (e Errors) DateOrder(field string, start, end time.Time) {
	if end.Before(start) {
		e.Add(field, "must be on or after start_date")
	}
}

// Currency requires a 3-letter uppercase code.
func (e Errors) Currency(field, value string) {
	if len(value) != 3 || strings.ToUpper(value) != value {
		e.Add(field, "must be a 3-letter currency code")
	}
}
