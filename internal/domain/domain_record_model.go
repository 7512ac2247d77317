package domain

import "time"

// DomainRecord is the persisted form used by the reference backend. ID keeps
// insertion order; PublicID is the identifier exposed over the API.
type DomainRecord struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	PublicID  string    `gorm:"uniqueIndex;size:36;not null"`
	Domain    string    `gorm:"size:253;not null"`
	IsActive  bool      `gorm:"not null"`
	Status    Status    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (DomainRecord) TableName() string {
	return "domains"
}

// ToDomain converts the stored row into the API representation.
func (r DomainRecord) ToDomain() Domain {
	return Domain{
		ID:          r.PublicID,
		Domain:      r.Domain,
		IsActive:    r.IsActive,
		Status:      r.Status,
		CreatedDate: r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
