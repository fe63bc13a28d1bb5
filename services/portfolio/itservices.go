package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func serviceSnapshot(m serviceModel) map[string]any {
	return map[string]any{
		"name":              m.Name,
		"unit_id":           uuidPtrString(m.UnitID),
		"category":          m.Category,
		"status":            m.Status,
		"service_owner":     m.ServiceOwner,
		"fte_count":         m.FTECount,
		"sla_level":         m.SLALevel,
		"service_method":    m.ServiceMethod,
		"budget_allocation": m.BudgetAllocation,
		"dependencies":      m.Dependencies,
		"description":       m.Description,
	}
}

// CreateService validates and inserts a new IT service, then writes an audit
// record.
func (a *API) CreateService(ctx context.Context, actor string, in ITServiceInput) (ITService, error) {
	sets, err := a.loadOptionSets(ctx, OptionServiceCategory, OptionServiceStatus, OptionSLALevel, OptionServiceMethod)
	if err != nil {
		return ITService{}, err
	}

	var v violations
	checkRequired(&v, "name", in.Name)
	if err := a.checkUnitRef(ctx, &v, in.UnitID); err != nil {
		return ITService{}, err
	}
	checkOption(&v, sets, "category", OptionServiceCategory, in.Category)
	checkOption(&v, sets, "status", OptionServiceStatus, in.Status)
	checkOption(&v, sets, "sla_level", OptionSLALevel, in.SLALevel)
	checkOption(&v, sets, "service_method", OptionServiceMethod, in.ServiceMethod)
	if err := v.err(); err != nil {
		return ITService{}, err
	}

	now := time.Now().UTC()
	model := serviceModel{
		ID:               uuid.New(),
		Name:             in.Name,
		UnitID:           in.UnitID,
		Category:         in.Category,
		Status:           in.Status,
		ServiceOwner:     in.ServiceOwner,
		FTECount:         in.FTECount,
		SLALevel:         in.SLALevel,
		ServiceMethod:    in.ServiceMethod,
		BudgetAllocation: in.BudgetAllocation,
		Dependencies:     in.Dependencies,
		Description:      in.Description,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := a.store.ORM.WithContext(ctx).Create(&model).Error; err != nil {
		return ITService{}, wrapStore(err)
	}

	a.recordAudit(ctx, actor, ActionCreate, EntityITService, model.ID.String(), model.Name, map[string]any{
		"snapshot": serviceSnapshot(model),
	})

	return model.toAPI(), nil
}

// GetService returns one IT service by id.
func (a *API) GetService(ctx context.Context, id uuid.UUID) (ITService, error) {
	var model serviceModel
	err := a.store.ORM.WithContext(ctx).Where("id = ?", id).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ITService{}, &NotFoundError{EntityType: EntityITService, ID: id.String()}
	case err != nil:
		return ITService{}, wrapStore(err)
	}
	return model.toAPI(), nil
}

// UpdateService applies a partial update; no-op updates write nothing and
// emit no audit record.
func (a *API) UpdateService(ctx context.Context, actor string, id uuid.UUID, in ITServiceUpdate) (ITService, error) {
	var model serviceModel
	err := a.store.ORM.WithContext(ctx).Where("id = ?", id).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ITService{}, &NotFoundError{EntityType: EntityITService, ID: id.String()}
	case err != nil:
		return ITService{}, wrapStore(err)
	}

	sets, err := a.loadOptionSets(ctx, OptionServiceCategory, OptionServiceStatus, OptionSLALevel, OptionServiceMethod)
	if err != nil {
		return ITService{}, err
	}

	var v violations
	if in.Name != nil {
		checkRequired(&v, "name", *in.Name)
	}
	if in.UnitID != nil {
		if err := a.checkUnitRef(ctx, &v, in.UnitID); err != nil {
			return ITService{}, err
		}
	}
	if in.Category != nil {
		checkOption(&v, sets, "category", OptionServiceCategory, *in.Category)
	}
	if in.Status != nil {
		checkOption(&v, sets, "status", OptionServiceStatus, *in.Status)
	}
	if in.SLALevel != nil {
		checkOption(&v, sets, "sla_level", OptionSLALevel, *in.SLALevel)
	}
	if in.ServiceMethod != nil {
		checkOption(&v, sets, "service_method", OptionServiceMethod, *in.ServiceMethod)
	}
	if err := v.err(); err != nil {
		return ITService{}, err
	}

	before := serviceSnapshot(model)

	if in.Name != nil {
		model.Name = *in.Name
	}
	if in.UnitID != nil {
		model.UnitID = in.UnitID
	}
	if in.Category != nil {
		model.Category = *in.Category
	}
	if in.Status != nil {
		model.Status = *in.Status
	}
	if in.ServiceOwner != nil {
		model.ServiceOwner = *in.ServiceOwner
	}
	if in.FTECount != nil {
		model.FTECount = *in.FTECount
	}
	if in.SLALevel != nil {
		model.SLALevel = *in.SLALevel
	}
	if in.ServiceMethod != nil {
		model.ServiceMethod = *in.ServiceMethod
	}
	if in.BudgetAllocation != nil {
		model.BudgetAllocation = *in.BudgetAllocation
	}
	if in.Dependencies != nil {
		model.Dependencies = *in.Dependencies
	}
	if in.Description != nil {
		model.Description = *in.Description
	}

	changes := computeDiff(before, serviceSnapshot(model))
	if len(changes) == 0 {
		return model.toAPI(), nil
	}

	model.UpdatedAt = time.Now().UTC()
	if err := a.store.ORM.WithContext(ctx).Save(&model).Error; err != nil {
		return ITService{}, wrapStore(err)
	}

	a.recordAudit(ctx, actor, ActionUpdate, EntityITService, model.ID.String(), model.Name, map[string]any{
		"changes": changes,
	})

	return model.toAPI(), nil
}

// DeleteService removes an IT service once the caller has confirmed.
func (a *API) DeleteService(ctx context.Context, actor string, id uuid.UUID, confirm bool) error {
	var model serviceModel
	err := a.store.ORM.WithContext(ctx).Where("id = ?", id).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &NotFoundError{EntityType: EntityITService, ID: id.String()}
	case err != nil:
		return wrapStore(err)
	}

	if !confirm {
		return ErrConfirmationRequired
	}

	if err := a.store.ORM.WithContext(ctx).Delete(&serviceModel{}, "id = ?", id).Error; err != nil {
		return wrapStore(err)
	}

	a.recordAudit(ctx, actor, ActionDelete, EntityITService, model.ID.String(), model.Name, map[string]any{
		"snapshot": serviceSnapshot(model),
	})

	return nil
}

// CopyService returns an input prefilled from an existing service with a
// marked name.
func (a *API) CopyService(ctx context.Context, id uuid.UUID) (ITServiceInput, error) {
	svc, err := a.GetService(ctx, id)
	if err != nil {
		return ITServiceInput{}, err
	}
	return ITServiceInput{
		Name:             copyName(svc.Name),
		UnitID:           svc.UnitID,
		Category:         svc.Category,
		Status:           svc.Status,
		ServiceOwner:     svc.ServiceOwner,
		FTECount:         svc.FTECount,
		SLALevel:         svc.SLALevel,
		ServiceMethod:    svc.ServiceMethod,
		BudgetAllocation: svc.BudgetAllocation,
		Dependencies:     svc.Dependencies,
		Description:      svc.Description,
	}, nil
}

// ListServices returns IT services matching the filter.
func (a *API) ListServices(ctx context.Context, f ListFilter) ([]ITService, error) {
	q := a.store.ORM.WithContext(ctx).Model(&serviceModel{})
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
		q = q.Where("budget_allocation >= ?", *f.MinCost)
	}
	if f.MaxCost != nil {
		q = q.Where("budget_allocation <= ?", *f.MaxCost)
	}
	q = applySort(q, f.Sort, "budget_allocation")

	var models []serviceModel
	if err := q.Find(&models).Error; err != nil {
		return nil, wrapStore(err)
	}

	services := make([]ITService, 0, len(models))
	for _, m := range models {
		services = append(services, m.toAPI())
	}
	return services, nil
}
