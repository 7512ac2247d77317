// Package filter narrows the fetched domain list on the client side.
package filter

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/soheilgoodarzi/domain-manager-assessment/internal/domain"
)

// ActiveState is a tri-state match on the active flag.
type ActiveState int

const (
	ActiveAny ActiveState = iota
	ActiveOnly
	InactiveOnly
)

// Matcher decides whether a record is kept.
type Matcher interface {
	Match(d domain.Domain) bool
}

type MatcherFunc func(d domain.Domain) bool

func (f MatcherFunc) Match(d domain.Domain) bool {
	return f(d)
}

// Predicate is the filter bar state. Zero values match everything; a zero
// Status means any status.
type Predicate struct {
	Domain string
	Active ActiveState
	Status domain.Status
}

func (p Predicate) Match(d domain.Domain) bool {
	if p.Domain != "" && !strings.Contains(strings.ToLower(d.Domain), strings.ToLower(p.Domain)) {
		return false
	}

	switch p.Active {
	case ActiveOnly:
		if !d.IsActive {
			return false
		}
	case InactiveOnly:
		if d.IsActive {
			return false
		}
	}

	if p.Status != 0 && d.Status != p.Status {
		return false
	}
	return true
}

// All matches records accepted by every matcher.
func All(matchers ...Matcher) Matcher {
	return MatcherFunc(func(d domain.Domain) bool {
		for _, m := range matchers {
			if !m.Match(d) {
				return false
			}
		}
		return true
	})
}

// Apply keeps the records accepted by m in their original order.
func Apply(records []domain.Domain, m Matcher) []domain.Domain {
	filtered := make([]domain.Domain, 0, len(records))
	for _, record := range records {
		if m == nil || m.Match(record) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// Parse reads the predicate from query parameters. Unknown select values
// fall back to "any".
func Parse(values url.Values) Predicate {
	p := Predicate{Domain: values.Get("domain")}

	switch strings.ToLower(strings.TrimSpace(values.Get("isActive"))) {
	case "true":
		p.Active = ActiveOnly
	case "false":
		p.Active = InactiveOnly
	}

	if status, err := domain.ParseStatus(values.Get("status")); err == nil {
		p.Status = status
	}
	return p
}

// HasParams reports whether the query carries any filter field.
func HasParams(values url.Values) bool {
	return values.Has("domain") || values.Has("isActive") || values.Has("status")
}

// ActiveValue is the select value for the active filter; "" means any.
func (p Predicate) ActiveValue() string {
	switch p.Active {
	case ActiveOnly:
		return "true"
	case InactiveOnly:
		return "false"
	default:
		return ""
	}
}

// StatusValue is the select value for the status filter; "" means any.
func (p Predicate) StatusValue() string {
	if p.Status == 0 {
		return ""
	}
	return strconv.Itoa(int(p.Status))
}

// Values encodes the non-empty fields back into query parameters.
func (p Predicate) Values() url.Values {
	values := url.Values{}
	if p.Domain != "" {
		values.Set("domain", p.Domain)
	}
	if v := p.ActiveValue(); v != "" {
		values.Set("isActive", v)
	}
	if v := p.StatusValue(); v != "" {
		values.Set("status", v)
	}
	return values
}
