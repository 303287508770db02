// Package query normalizes catalog request parameters and composes the
// filter predicates that feed the relational store.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 8
	MaxLimit     = 100

	// DefaultLocale is the public default ("ka"); its storage key is "ge".
	DefaultLocale = "ka"
)

var supportedLocales = map[string]bool{
	"ka": true,
	"en": true,
	"ru": true,
}

// Params are the normalized catalog query parameters
type Params struct {
	Page      int
	Limit     int
	Companies []int
	Platform  string
	Locale    string
}

// Offset computes the row offset for the current page
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// StorageLocale maps the public locale code to the internal storage key.
// Georgian content is stored under "ge".
func (p Params) StorageLocale() string {
	if p.Locale == "ka" {
		return "ge"
	}
	return p.Locale
}

// HasFilters reports whether any filter dimension is set
func (p Params) HasFilters() bool {
	return len(p.Companies) > 0 || p.Platform != ""
}

// Normalize parses raw query values into Params, applying defaults and
// bounds. Page is clamped to >=1 and limit to [1, MaxLimit]; unparseable
// values fall back to the defaults. An unsupported locale falls back to
// Georgian.
func Normalize(values url.Values) Params {
	p := Params{
		Page:   parseBounded(values.Get("page"), DefaultPage, 1, 0),
		Limit:  parseBounded(values.Get("limit"), DefaultLimit, 1, MaxLimit),
		Locale: NormalizeLocale(values.Get("locale")),
	}

	p.Companies = ParseCompanies(values.Get("companies"))
	p.Platform = strings.TrimSpace(values.Get("platform"))

	return p
}

// NormalizeLocale returns the locale if supported, otherwise the default
func NormalizeLocale(locale string) string {
	if supportedLocales[locale] {
		return locale
	}
	return DefaultLocale
}

// ParseCompanies splits a comma-separated id list into distinct integers,
// preserving first-seen order. Malformed entries are dropped.
func ParseCompanies(raw string) []int {
	if raw == "" {
		return nil
	}

	seen := make(map[int]bool)
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// parseBounded parses s as an integer with a default and bounds.
// max <= 0 means unbounded above.
func parseBounded(s string, def, min, max int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		n = def
	}
	if n < min {
		n = min
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}
