package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func infrastructureSnapshot(m infrastructureModel) map[string]any {
	return map[string]any{
		"name":                    m.Name,
		"unit_id":                 uuidPtrString(m.UnitID),
		"vendor":                  m.Vendor,
		"type":                    m.Type,
		"location":                m.Location,
		"status":                  m.Status,
		"purchase_date":           m.PurchaseDate,
		"warranty_expiry":         m.WarrantyExpiry,
		"annual_maintenance_cost": m.AnnualMaintenanceCost,
		"description":             m.Description,
	}
}

// CreateInfrastructure validates and inserts a new asset, then writes an
// audit record.
func (a *API) CreateInfrastructure(ctx context.Context, actor string, in InfrastructureInput) (Infrastructure, error) {
	sets, err := a.loadOptionSets(ctx, OptionVendor, OptionInfrastructureType, OptionAssetStatus)
	if err != nil {
		return Infrastructure{}, err
	}

	var v violations
	checkRequired(&v, "name", in.Name)
	if err := a.checkUnitRef(ctx, &v, in.UnitID); err != nil {
		return Infrastructure{}, err
	}
	checkOption(&v, sets, "vendor", OptionVendor, in.Vendor)
	checkOption(&v, sets, "type", OptionInfrastructureType, in.Type)
	checkOption(&v, sets, "status", OptionAssetStatus, in.Status)
	if err := v.err(); err != nil {
		return Infrastructure{}, err
	}

	now := time.Now().UTC()
	model := infrastructureModel{
		ID:                    uuid.New(),
		Name:                  in.Name,
		UnitID:                in.UnitID,
		Vendor:                in.Vendor,
		Type:                  in.Type,
		Location:              in.Location,
		Status:                in.Status,
		PurchaseDate:          in.PurchaseDate,
		WarrantyExpiry:        in.WarrantyExpiry,
		AnnualMaintenanceCost: in.AnnualMaintenanceCost,
		Description:           in.Description,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := a.store.ORM.WithContext(ctx).Create(&model).Error; err != nil {
		return Infrastructure{}, wrapStore(err)
	}

	a.recordAudit(ctx, actor, ActionCreate, EntityInfrastructure, model.ID.String(), model.Name, map[string]any{
		"snapshot": infrastructureSnapshot(model),
	})

	return model.toAPI(), nil
}

// GetInfrastructure returns one asset by id.
func (a *API) GetInfrastructure(ctx context.Context, id uuid.UUID) (Infrastructure, error) {
	var model infrastructureModel
	err := a.store.ORM.WithContext(ctx).Where("id = ?", id).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Infrastructure{}, &NotFoundError{EntityType: EntityInfrastructure, ID: id.String()}
	case err != nil:
		return Infrastructure{}, wrapStore(err)
	}
	return model.toAPI(), nil
}

// UpdateInfrastructure applies a partial update; no-op updates write nothing
// and emit no audit record.
func (a *API) UpdateInfrastructure(ctx context.Context, actor string, id uuid.UUID, in InfrastructureUpdate) (Infrastructure, error) {
	var model infrastructureModel
	err := a.store.ORM.WithContext(ctx).Where("id = ?", id).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Infrastructure{}, &NotFoundError{EntityType: EntityInfrastructure, ID: id.String()}
	case err != nil:
		return Infrastructure{}, wrapStore(err)
	}

	sets, err := a.loadOptionSets(ctx, OptionVendor, OptionInfrastructureType, OptionAssetStatus)
	if err != nil {
		return Infrastructure{}, err
	}

	var v violations
	if in.Name != nil {
		checkRequired(&v, "name", *in.Name)
	}
	if in.UnitID != nil {
		if err := a.checkUnitRef(ctx, &v, in.UnitID); err != nil {
			return Infrastructure{}, err
		}
	}
	if in.Vendor != nil {
		checkOption(&v, sets, "vendor", OptionVendor, *in.Vendor)
	}
	if in.Type != nil {
		checkOption(&v, sets, "type", OptionInfrastructureType, *in.Type)
	}
	if in.Status != nil {
		checkOption(&v, sets, "status", OptionAssetStatus, *in.Status)
	}
	if err := v.err(); err != nil {
		return Infrastructure{}, err
	}

	before := infrastructureSnapshot(model)

	if in.Name != nil {
		model.Name = *in.Name
	}
	if in.UnitID != nil {
		model.UnitID = in.UnitID
	}
	if in.Vendor != nil {
		model.Vendor = *in.Vendor
	}
	if in.Type != nil {
		model.Type = *in.Type
	}
	if in.Location != nil {
		model.Location = *in.Location
	}
	if in.Status != nil {
		model.Status = *in.Status
	}
	if in.PurchaseDate != nil {
		model.PurchaseDate = *in.PurchaseDate
	}
	if in.WarrantyExpiry != nil {
		model.WarrantyExpiry = *in.WarrantyExpiry
	}
	if in.AnnualMaintenanceCost != nil {
		model.AnnualMaintenanceCost = *in.AnnualMaintenanceCost
	}
	if in.Description != nil {
		model.Description = *in.Description
	}

	changes := computeDiff(before, infrastructureSnapshot(model))
	if len(changes) == 0 {
		return model.toAPI(), nil
	}

	model.UpdatedAt = time.Now().UTC()
	if err := a.store.ORM.WithContext(ctx).Save(&model).Error; err != nil {
		return Infrastructure{}, wrapStore(err)
	}

	a.recordAudit(ctx, actor, ActionUpdate, EntityInfrastructure, model.ID.String(), model.Name, map[string]any{
		"changes": changes,
	})

	return model.toAPI(), nil
}

// DeleteInfrastructure removes an asset once the caller has confirmed.
func (a *API) DeleteInfrastructure(ctx context.Context, actor string, id uuid.UUID, confirm bool) error {
	var model infrastructureModel
	err := a.store.ORM.WithContext(ctx).Where("id = ?", id).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &NotFoundError{EntityType: EntityInfrastructure, ID: id.String()}
	case err != nil:
		return wrapStore(err)
	}

	if !confirm {
		return ErrConfirmationRequired
	}

	if err := a.store.ORM.WithContext(ctx).Delete(&infrastructureModel{}, "id = ?", id).Error; err != nil {
		return wrapStore(err)
	}

	a.recordAudit(ctx, actor, ActionDelete, EntityInfrastructure, model.ID.String(), model.Name, map[string]any{
		"snapshot": infrastructureSnapshot(model),
	})

	return nil
}

// CopyInfrastructure returns an input prefilled from an existing asset with
// a marked name.
func (a *API) CopyInfrastructure(ctx context.Context, id uuid.UUID) (InfrastructureInput, error) {
	asset, err := a.GetInfrastructure(ctx, id)
	if err != nil {
		return InfrastructureInput{}, err
	}
	return InfrastructureInput{
		Name:                  copyName(asset.Name),
		UnitID:                asset.UnitID,
		Vendor:                asset.Vendor,
		Type:                  asset.Type,
		Location:              asset.Location,
		Status:                asset.Status,
		PurchaseDate:          asset.PurchaseDate,
		WarrantyExpiry:        asset.WarrantyExpiry,
		AnnualMaintenanceCost: asset.AnnualMaintenanceCost,
		Description:           asset.Description,
	}, nil
}

// ListInfrastructure returns assets matching the filter.
func (a *API) ListInfrastructure(ctx context.Context, f ListFilter) ([]Infrastructure, error) {
	q := a.store.ORM.WithContext(ctx).Model(&infrastructureModel{})
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		q = q.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if f.Category != "" {
		q = q.Where("type = ?", f.Category)
	}
	if f.UnitID != nil {
		q = q.Where("unit_id = ?", *f.UnitID)
	}
	if f.MinCost != nil {
		q = q.Where("annual_maintenance_cost >= ?", *f.MinCost)
	}
	if f.MaxCost != nil {
		q = q.Where("annual_maintenance_cost <= ?", *f.MaxCost)
	}
	q = applySort(q, f.Sort, "annual_maintenance_cost")

	var models []infrastructureModel
	if err := q.Find(&models).Error; err != nil {
		return nil, wrapStore(err)
	}

	assets := make([]Infrastructure, 0, len(models))
	for _, m := range models {
		assets = append(assets, m.toAPI())
	}
	return assets, nil
}
