package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	errs := New()
	assert.True(t, errs.Empty())

	errs.Add("title", "is required")
	errs.Add("title", "must not exceed 255 characters")
	assert.False(t, errs.Empty())
	assert.Equal(t, []string{"is required", "must not exceed 255 characters"}, errs["title"])
}

func TestRequired(t *testing.T) {
	errs := New()
	errs.Required("title", "Clean Water")
	errs.Required("description", "   ")
	errs.Required("goal", "")

	assert.NotContains(t, errs, "title")
	assert.Contains(t, errs, "description")
	assert.Contains(t, errs, "goal")
}

func TestMaxLen(t *testing.T) {
	errs := New()
	errs.MaxLen("title", "short", 10)
	errs.MaxLen("slug", "this one is far too long", 10)

	assert.NotContains(t, errs, "title")
	assert.Equal(t, []string{"must not exceed 10 characters"}, errs["slug"])
}

func TestMinInt(t *testing.T) {
	errs := New()
	errs.MinInt("amount", 100, 1)
	errs.MinInt("goal", 0, 1)

	assert.NotContains(t, errs, "amount")
	assert.Equal(t, []string{"must be at least 1"}, errs["goal"])
}

func TestOneOf(t *testing.T) {
	errs := New()
	errs.OneOf("status", 2, 1, 2, 3)
	errs.OneOf("visibility", 9, 0, 1)

	assert.NotContains(t, errs, "status")
	assert.Equal(t, []string{"is not a valid value"}, errs["visibility"])
}

func TestDateOrder(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	errs := New()
	errs.DateOrder("end_date", start, start.AddDate(0, 1, 0))
	assert.NotContains(t, errs, "end_date")

	errs.DateOrder("end_date", start, start.AddDate(0, 0, -1))
	assert.Contains(t, errs, "end_date")
}

func TestCurrency(t *testing.T) {
	errs := New()
	errs.Currency("currency", "USD")
	assert.NotContains(t, errs, "currency")

	errs.Currency("currency", "usd")
	assert.Contains(t, errs, "currency")

	errs = New()
	errs.Currency("currency", "DOLLARS")
	assert.Equal(t, []string{"must be a 3-letter currency code"}, errs["currency"])
}
