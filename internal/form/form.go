// Package form validates the create/edit domain form.
package form

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/soheilgoodarzi/domain-manager-assessment/internal/domain"
)

// Field names as posted by the form.
const (
	FieldDomain   = "domain"
	FieldStatus   = "status"
	FieldIsActive = "isActive"
)

// Values are the raw form fields, kept verbatim so a failed submit can be
// shown again exactly as entered.
type Values struct {
	Domain   string
	Status   string
	IsActive string
}

// Errors maps a field name to its message.
type Errors map[string]string

func (e Errors) Error() string {
	for _, field := range []string{FieldDomain, FieldStatus, FieldIsActive} {
		if msg, ok := e[field]; ok {
			return field + ": " + msg
		}
	}
	return "invalid form"
}

// Defaults are the values of an empty create form.
func Defaults() Values {
	return Values{Domain: "", Status: "1", IsActive: "true"}
}

// FromDomain pre-fills the edit form.
func FromDomain(d domain.Domain) Values {
	return Values{
		Domain:   d.Domain,
		Status:   strconv.Itoa(int(d.Status)),
		IsActive: strconv.FormatBool(d.IsActive),
	}
}

// FromRequest reads the posted fields.
func FromRequest(values url.Values) Values {
	return Values{
		Domain:   values.Get(FieldDomain),
		Status:   values.Get(FieldStatus),
		IsActive: values.Get(FieldIsActive),
	}
}

// Validate checks every field and returns the typed payload, or Errors
// holding one message per failing field.
func (v Values) Validate() (domain.Input, Errors) {
	errs := Errors{}
	var input domain.Input

	switch err := domain.ValidateHostname(v.Domain); {
	case errors.Is(err, domain.ErrDomainEmpty):
		errs[FieldDomain] = "Domain is required"
	case err != nil:
		errs[FieldDomain] = "Invalid domain format"
	default:
		input.Domain = v.Domain
	}

	switch v.Status {
	case "1", "2", "3":
		status, _ := domain.ParseStatus(v.Status)
		input.Status = status
	default:
		errs[FieldStatus] = "Invalid status"
	}

	switch v.IsActive {
	case "true":
		input.IsActive = true
	case "false":
		input.IsActive = false
	default:
		errs[FieldIsActive] = "Invalid active state"
	}

	if len(errs) > 0 {
		return domain.Input{}, errs
	}
	return input, nil
}
