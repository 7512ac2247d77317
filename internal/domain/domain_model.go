package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Status is the verification state of a managed domain. The remote API
// encodes it as a small integer.
type Status int

const (
	StatusPending  Status = 1
	StatusVerified Status = 2
	StatusRejected Status = 3
)

var (
	ErrInvalidStatus = errors.New("invalid status")
	ErrDomainEmpty   = errors.New("domain is required")
	ErrDomainFormat  = errors.New("invalid domain format")
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPending, StatusVerified, StatusRejected}

var hostnamePattern = regexp.MustCompile(`^(www\.)?[a-zA-Z0-9-]+\.[a-zA-Z]{2,}$`)

func (s Status) Valid() bool {
	return s >= StatusPending && s <= StatusRejected
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusVerified:
		return "Verified"
	case StatusRejected:
		return "Rejected"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus accepts the numeric wire form ("1", "2", "3").
func ParseStatus(raw string) (Status, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	status := Status(n)
	if !status.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return status, nil
}

// Domain is a record as served by the remote API. ID and CreatedDate are
// assigned by the server.
type Domain struct {
	ID          string `json:"id"`
	Domain      string `json:"domain"`
	IsActive    bool   `json:"isActive"`
	Status      Status `json:"status"`
	CreatedDate string `json:"createdDate"`
}

// CreatedAt parses CreatedDate. The remote side only promises an ISO-ish
// timestamp, so a few layouts are tried.
func (d Domain) CreatedAt() (time.Time, bool) {
	raw := strings.TrimSpace(d.CreatedDate)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var createdLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Input is the create/update payload.
type Input struct {
	Domain   string `json:"domain"`
	Status   Status `json:"status"`
	IsActive bool   `json:"isActive"`
}

func (in Input) Validate() error {
	if err := ValidateHostname(in.Domain); err != nil {
		return err
	}
	if !in.Status.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidStatus, int(in.Status))
	}
	return nil
}

// ValidateHostname checks the simple hostname rule: optional "www." prefix,
// one label, a dot and a TLD of at least two letters.
func ValidateHostname(name string) error {
	if name == "" {
		return ErrDomainEmpty
	}
	if !hostnamePattern.MatchString(name) {
		return ErrDomainFormat
	}
	return nil
}

// InputOf returns the editable part of a record.
func InputOf(d Domain) Input {
	return Input{Domain: d.Domain, Status: d.Status, IsActive: d.IsActive}
}
