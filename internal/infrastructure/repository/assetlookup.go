package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"cmms/internal/domain/maintenance"
	"cmms/internal/infrastructure/persistence/models"
	"cmms/internal/shared/db"
)

// AssetLookup reads equipment and locations owned by the asset subsystem.
type AssetLookup struct {
	db *gorm.DB
}

func NewAssetLookup(db *gorm.DB) *AssetLookup {
	return &AssetLookup{db: db}
}

// GetEquipment loads an equipment with its location. A dangling location
// reference yields an equipment without location rather than an error.
func (r *AssetLookup) GetEquipment(ctx context.Context, id uint) (*maintenance.Equipment, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var model models.EquipmentModel
	if err := tx.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, maintenance.ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}

	equipment := &maintenance.Equipment{
		ID:       model.ID,
		TenantID: model.TenantID,
		Tag:      model.Tag,
		Name:     model.Name,
	}
	if model.LocationID == nil {
		return equipment, nil
	}

	var location models.LocationModel
	if err := tx.First(&location, *model.LocationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return equipment, nil
		}
		return nil, fmt.Errorf("failed to get equipment location: %w", err)
	}
	equipment.Location = toLocation(&location)
	return equipment, nil
}

// FirstLocation returns the lowest-id location that belongs to a site.
func (r *AssetLookup) FirstLocation(ctx context.Context) (*maintenance.Location, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var location models.LocationModel
	if err := tx.
		Where("site_id IS NOT NULL AND site_id <> 0").
		Order("id ASC").
		First(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, maintenance.ErrLocationUnresolved
		}
		return nil, fmt.Errorf("failed to get first location: %w", err)
	}
	return toLocation(&location), nil
}

func toLocation(m *models.LocationModel) *maintenance.Location {
	loc := &maintenance.Location{ID: m.ID, Name: m.Name}
	if m.SiteID != nil {
		loc.SiteID = *m.SiteID
	}
	if m.ZoneID != nil {
		loc.ZoneID = *m.ZoneID
	}
	return loc
}
