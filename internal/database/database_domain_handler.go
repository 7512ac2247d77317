package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/soheilgoodarzi/domain-manager-assessment/internal/api/dto"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDomainNotFound   = errors.New("domain not found")
	errDatabaseNotReady = errors.New("domain store: database connection was not initialised")
)

// ListDomains returns every record in creation order.
func ListDomains(ctx context.Context) ([]domain.Domain, error) {
	if DB == nil {
		return nil, errDatabaseNotReady
	}

	var rows []domain.DomainRecord
	if err := DB.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("domain store: list: %w", err)
	}

	out := make([]domain.Domain, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}

func GetDomain(ctx context.Context, id string) (domain.Domain, error) {
	if DB == nil {
		return domain.Domain{}, errDatabaseNotReady
	}

	row, err := findDomain(DB.WithContext(ctx), id)
	if err != nil {
		return domain.Domain{}, err
	}
	return row.ToDomain(), nil
}

func CreateDomain(ctx context.Context, in domain.Input) (domain.Domain, error) {
	if DB == nil {
		return domain.Domain{}, errDatabaseNotReady
	}
	in.Domain = strings.TrimSpace(in.Domain)
	if err := in.Validate(); err != nil {
		return domain.Domain{}, err
	}

	row := domain.DomainRecord{
		PublicID: uuid.NewString(),
		Domain:   in.Domain,
		IsActive: in.IsActive,
		Status:   in.Status,
	}
	if err := DB.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Domain{}, fmt.Errorf("domain store: create: %w", err)
	}
	return row.ToDomain(), nil
}

// UpdateDomain replaces the editable fields of the record.
func UpdateDomain(ctx context.Context, id string, in domain.Input) (domain.Domain, error) {
	return PatchDomain(ctx, id, dto.DomainPatch{
		Domain:   &in.Domain,
		Status:   &in.Status,
		IsActive: &in.IsActive,
	})
}

// PatchDomain applies a partial update. The merged result must still be a
// valid record.
func PatchDomain(ctx context.Context, id string, patch dto.DomainPatch) (domain.Domain, error) {
	if DB == nil {
		return domain.Domain{}, errDatabaseNotReady
	}

	var result domain.Domain
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := findDomain(tx, id)
		if err != nil {
			return err
		}

		merged := patch.Apply(domain.InputOf(row.ToDomain()))
		merged.Domain = strings.TrimSpace(merged.Domain)
		if err := merged.Validate(); err != nil {
			return err
		}

		row.Domain = merged.Domain
		row.Status = merged.Status
		row.IsActive = merged.IsActive
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("domain store: update: %w", err)
		}
		result = row.ToDomain()
		return nil
	})
	if err != nil {
		return domain.Domain{}, err
	}
	return result, nil
}

func DeleteDomain(ctx context.Context, id string) error {
	if DB == nil {
		return errDatabaseNotReady
	}

	res := DB.WithContext(ctx).Where("public_id = ?", id).Delete(&domain.DomainRecord{})
	if res.Error != nil {
		return fmt.Errorf("domain store: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrDomainNotFound
	}
	return nil
}

func findDomain(tx *gorm.DB, id string) (domain.DomainRecord, error) {
	var row domain.DomainRecord
	if err := tx.Where("public_id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return row, ErrDomainNotFound
		}
		return row, fmt.Errorf("domain store: lookup: %w", err)
	}
	return row, nil
}
