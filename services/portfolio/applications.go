package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func applicationSnapshot(m applicationModel) map[string]any {
	return map[string]any{
		"name":          m.Name,
		"unit_id":       uuidPtrString(m.UnitID),
		"vendor":        m.Vendor,
		"category":      m.Category,
		"service_type":  m.ServiceType,
		"internal":      m.Internal,
		"annual_cost":   m.AnnualCost,
		"renewal_date":  m.RenewalDate,
		"integrations":  m.Integrations,
		"description":   m.Description,
		"service_owner": m.ServiceOwner,
	}
}

func uuidPtrString(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

// CreateApplication validates and inserts a new application, then writes an
// audit record. The owning unit reference is mandatory and must resolve.
func (a *API) CreateApplication(ctx context.Context, actor string, in ApplicationInput) (Application, error) {
	sets, err := a.loadOptionSets(ctx, OptionVendor, OptionApplicationCategory, OptionApplicationType)
	if err != nil {
		return Application{}, err
	}

	var v violations
	checkRequired(&v, "name", in.Name)
	if in.UnitID == nil {
		v.add("unit_id", "is required")
	} else if err := a.checkUnitRef(ctx, &v, in.UnitID); err != nil {
		return Application{}, err
	}
	checkOption(&v, sets, "vendor", OptionVendor, in.Vendor)
	checkOption(&v, sets, "category", OptionApplicationCategory, in.Category)
	checkOption(&v, sets, "service_type", OptionApplicationType, in.ServiceType)
	if err := v.err(); err != nil {
		return Application{}, err
	}

	now := time.Now().UTC()
	model := applicationModel{
		ID:           uuid.New(),
		Name:         in.Name,
		UnitID:       in.UnitID,
		Vendor:       in.Vendor,
		Category:     in.Category,
		ServiceType:  in.ServiceType,
		Internal:     in.Internal,
		AnnualCost:   in.AnnualCost,
		RenewalDate:  in.RenewalDate,
		Integrations: in.Integrations,
		Description:  in.Description,
		ServiceOwner: in.ServiceOwner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.ORM.WithContext(ctx).Create(&model).Error; err != nil {
		return Application{}, wrapStore(err)
	}

	a.recordAudit(ctx, actor, ActionCreate, EntityApplication, model.ID.String(), model.Name, map[string]any{
		"snapshot": applicationSnapshot(model),
	})

	return model.toAPI(), nil
}

// GetApplication returns one application by id.
func (a *API) GetApplication(ctx context.Context, id uuid.UUID) (Application, error) {
	var model applicationModel
	err := a.store.ORM.WithContext(ctx).Where("id = ?", id).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Application{}, &NotFoundError{EntityType: EntityApplication, ID: id.String()}
	case err != nil:
		return Application{}, wrapStore(err)
	}
	return model.toAPI(), nil
}

// UpdateApplication applies a partial update with the same validation rules
// as create for the supplied fields. A no-op update performs no write and
// emits no audit record.
func (a *API) UpdateApplication(ctx context.Context, actor string, id uuid.UUID, in ApplicationUpdate) (Application, error) {
	var model applicationModel
	err := a.store.ORM.WithContext(ctx).Where("id = ?", id).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Application{}, &NotFoundError{EntityType: EntityApplication, ID: id.String()}
	case err != nil:
		return Application{}, wrapStore(err)
	}

	sets, err := a.loadOptionSets(ctx, OptionVendor, OptionApplicationCategory, OptionApplicationType)
	if err != nil {
		return Application{}, err
	}

	var v violations
	if in.Name != nil {
		checkRequired(&v, "name", *in.Name)
	}
	if in.UnitID != nil {
		if err := a.checkUnitRef(ctx, &v, in.UnitID); err != nil {
			return Application{}, err
		}
	}
	if in.Vendor != nil {
		checkOption(&v, sets, "vendor", OptionVendor, *in.Vendor)
	}
	if in.Category != nil {
		checkOption(&v, sets, "category", OptionApplicationCategory, *in.Category)
	}
	if in.ServiceType != nil {
		checkOption(&v, sets, "service_type", OptionApplicationType, *in.ServiceType)
	}
	if err := v.err(); err != nil {
		return Application{}, err
	}

	before := applicationSnapshot(model)

	if in.Name != nil {
		model.Name = *in.Name
	}
	if in.UnitID != nil {
		model.UnitID = in.UnitID
	}
	if in.Vendor != nil {
		model.Vendor = *in.Vendor
	}
	if in.Category != nil {
		model.Category = *in.Category
	}
	if in.ServiceType != nil {
		model.ServiceType = *in.ServiceType
	}
	if in.Internal != nil {
		model.Internal = *in.Internal
	}
	if in.AnnualCost != nil {
		model.AnnualCost = *in.AnnualCost
	}
	if in.RenewalDate != nil {
		model.RenewalDate = *in.RenewalDate
	}
	if in.Integrations != nil {
		model.Integrations = *in.Integrations
	}
	if in.Description != nil {
		model.Description = *in.Description
	}
	if in.ServiceOwner != nil {
		model.ServiceOwner = *in.ServiceOwner
	}

	changes := computeDiff(before, applicationSnapshot(model))
	if len(changes) == 0 {
		return model.toAPI(), nil
	}

	model.UpdatedAt = time.Now().UTC()
	if err := a.store.ORM.WithContext(ctx).Save(&model).Error; err != nil {
		return Application{}, wrapStore(err)
	}

	a.recordAudit(ctx, actor, ActionUpdate, EntityApplication, model.ID.String(), model.Name, map[string]any{
		"changes": changes,
	})

	return model.toAPI(), nil
}

// DeleteApplication removes an application once the caller has confirmed.
// The audit record carries the full pre-deletion snapshot since the row is
// no longer retrievable afterwards.
func (a *API) DeleteApplication(ctx context.Context, actor string, id uuid.UUID, confirm bool) error {
	var model applicationModel
	err := a.store.ORM.WithContext(ctx).Where("id = ?", id).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &NotFoundError{EntityType: EntityApplication, ID: id.String()}
	case err != nil:
		return wrapStore(err)
	}

	if !confirm {
		return ErrConfirmationRequired
	}

	if err := a.store.ORM.WithContext(ctx).Delete(&applicationModel{}, "id = ?", id).Error; err != nil {
		return wrapStore(err)
	}

	a.recordAudit(ctx, actor, ActionDelete, EntityApplication, model.ID.String(), model.Name, map[string]any{
		"snapshot": applicationSnapshot(model),
	})

	return nil
}

// CopyApplication returns an input prefilled from an existing application
// with a marked name. Convenience read only; no write, no audit record.
func (a *API) CopyApplication(ctx context.Context, id uuid.UUID) (ApplicationInput, error) {
	app, err := a.GetApplication(ctx, id)
	if err != nil {
		return ApplicationInput{}, err
	}
	return ApplicationInput{
		Name:         copyName(app.Name),
		UnitID:       app.UnitID,
		Vendor:       app.Vendor,
		Category:     app.Category,
		ServiceType:  app.ServiceType,
		Internal:     app.Internal,
		AnnualCost:   app.AnnualCost,
		RenewalDate:  app.RenewalDate,
		Integrations: app.Integrations,
		Description:  app.Description,
		ServiceOwner: app.ServiceOwner,
	}, nil
}

// ListApplications returns applications matching the filter, in insertion
// order unless a sort key is given.
func (a *API) ListApplications(ctx context.Context, f ListFilter) ([]Application, error) {
	q := a.store.ORM.WithContext(ctx).Model(&applicationModel{})
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		q = q.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.UnitID != nil {
		q = q.Where("unit_id = ?", *f.UnitID)
	}
	if f.MinCost != nil {
		q = q.Where("annual_cost >= ?", *f.MinCost)
	}
	if f.MaxCost != nil {
		q = q.Where("annual_cost <= ?", *f.MaxCost)
	}
	q = applySort(q, f.Sort, "annual_cost")

	var models []applicationModel
	if err := q.Find(&models).Error; err != nil {
		return nil, wrapStore(err)
	}

	apps := make([]Application, 0, len(models))
	for _, m := range models {
		apps = append(apps, m.toAPI())
	}
	return apps, nil
}
