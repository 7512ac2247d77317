package dto

import "github.com/soheilgoodarzi/domain-manager-assessment/internal/domain"

// DomainPage is the paginated envelope returned by the list endpoint.
type DomainPage struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []domain.Domain `json:"results"`
}

// DomainPatch carries a partial update; nil fields keep their stored value.
type DomainPatch struct {
	Domain   *string        `json:"domain"`
	Status   *domain.Status `json:"status"`
	IsActive *bool          `json:"isActive"`
}

// Apply merges the patch onto the current values.
func (p DomainPatch) Apply(current domain.Input) domain.Input {
	if p.Domain != nil {
		current.Domain = *p.Domain
	}
	if p.Status != nil {
		current.Status = *p.Status
	}
	if p.IsActive != nil {
		current.IsActive = *p.IsActive
	}
	return current
}
