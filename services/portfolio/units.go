package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func unitSnapshot(m unitModel) map[string]any {
	return map[string]any{
		"name":           m.Name,
		"contact_person": m.ContactPerson,
		"contact_email":  m.ContactEmail,
		"total_fte":      m.TotalFTE,
		"budget_amount":  m.BudgetAmount,
		"notes":          m.Notes,
	}
}

// CreateUnit validates and inserts a new IT unit, then writes an audit
// record.
func (a *API) CreateUnit(ctx context.Context, actor string, in ITUnitInput) (ITUnit, error) {
	var v violations
	checkRequired(&v, "name", in.Name)

	if in.Name != "" {
		var existing unitModel
		err := a.store.ORM.WithContext(ctx).Where("name = ?", in.Name).First(&existing).Error
		switch {
		case err == nil:
			v.add("name", fmt.Sprintf("an IT unit named %q already exists", in.Name))
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return ITUnit{}, wrapStore(err)
		}
	}

	if err := v.err(); err != nil {
		return ITUnit{}, err
	}

	now := time.Now().UTC()
	model := unitModel{
		ID:            uuid.New(),
		Name:          in.Name,
		ContactPerson: in.ContactPerson,
		ContactEmail:  in.ContactEmail,
		TotalFTE:      in.TotalFTE,
		BudgetAmount:  in.BudgetAmount,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := a.store.ORM.WithContext(ctx).Create(&model).Error; err != nil {
		return ITUnit{}, wrapStore(err)
	}

	a.recordAudit(ctx, actor, ActionCreate, EntityITUnit, model.ID.String(), model.Name, map[string]any{
		"snapshot": unitSnapshot(model),
	})

	return model.toAPI(), nil
}

// GetUnit returns one IT unit by id.
func (a *API) GetUnit(ctx context.Context, id uuid.UUID) (ITUnit, error) {
	var model unitModel
	err := a.store.ORM.WithContext(ctx).Where("id = ?", id).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ITUnit{}, &NotFoundError{EntityType: EntityITUnit, ID: id.String()}
	case err != nil:
		return ITUnit{}, wrapStore(err)
	}
	return model.toAPI(), nil
}

// UpdateUnit applies a partial update. Only supplied fields are written, and
// a no-op update produces neither a write nor an audit record.
func (a *API) UpdateUnit(ctx context.Context, actor string, id uuid.UUID, in ITUnitUpdate) (ITUnit, error) {
	var model unitModel
	err := a.store.ORM.WithContext(ctx).Where("id = ?", id).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ITUnit{}, &NotFoundError{EntityType: EntityITUnit, ID: id.String()}
	case err != nil:
		return ITUnit{}, wrapStore(err)
	}

	var v violations
	if in.Name != nil {
		checkRequired(&v, "name", *in.Name)
		if *in.Name != "" && *in.Name != model.Name {
			var existing unitModel
			err := a.store.ORM.WithContext(ctx).Where("name = ? AND id <> ?", *in.Name, id).First(&existing).Error
			switch {
			case err == nil:
				v.add("name", fmt.Sprintf("an IT unit named %q already exists", *in.Name))
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return ITUnit{}, wrapStore(err)
			}
		}
	}
	if err := v.err(); err != nil {
		return ITUnit{}, err
	}

	before := unitSnapshot(model)

	if in.Name != nil {
		model.Name = *in.Name
	}
	if in.ContactPerson != nil {
		model.ContactPerson = *in.ContactPerson
	}
	if in.ContactEmail != nil {
		model.ContactEmail = *in.ContactEmail
	}
	if in.TotalFTE != nil {
		model.TotalFTE = *in.TotalFTE
	}
	if in.BudgetAmount != nil {
		model.BudgetAmount = *in.BudgetAmount
	}
	if in.Notes != nil {
		model.Notes = *in.Notes
	}

	changes := computeDiff(before, unitSnapshot(model))
	if len(changes) == 0 {
		return model.toAPI(), nil
	}

	model.UpdatedAt = time.Now().UTC()
	if err := a.store.ORM.WithContext(ctx).Save(&model).Error; err != nil {
		return ITUnit{}, wrapStore(err)
	}

	a.recordAudit(ctx, actor, ActionUpdate, EntityITUnit, model.ID.String(), model.Name, map[string]any{
		"changes": changes,
	})

	return model.toAPI(), nil
}

// DeleteUnit removes an IT unit once the caller has confirmed. Dependent
// applications, infrastructure, and services keep their rows but lose the
// owning-unit reference; the detachment happens in the same transaction as
// the delete.
func (a *API) DeleteUnit(ctx context.Context, actor string, id uuid.UUID, confirm bool) error {
	var model unitModel
	err := a.store.ORM.WithContext(ctx).Where("id = ?", id).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &NotFoundError{EntityType: EntityITUnit, ID: id.String()}
	case err != nil:
		return wrapStore(err)
	}

	if !confirm {
		return ErrConfirmationRequired
	}

	detached := map[string]int64{}
	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []any{&applicationModel{}, &infrastructureModel{}, &serviceModel{}} {
			res := tx.Model(dependent).Where("unit_id = ?", id).Update("unit_id", nil)
			if res.Error != nil {
				return res.Error
			}
			switch dependent.(type) {
			case *applicationModel:
				detached["applications"] = res.RowsAffected
			case *infrastructureModel:
				detached["infrastructure"] = res.RowsAffected
			case *serviceModel:
				detached["it_services"] = res.RowsAffected
			}
		}
		return tx.Delete(&unitModel{}, "id = ?", id).Error
	})
	if err != nil {
		return wrapStore(err)
	}

	a.recordAudit(ctx, actor, ActionDelete, EntityITUnit, model.ID.String(), model.Name, map[string]any{
		"snapshot": unitSnapshot(model),
		"detached": detached,
	})

	return nil
}

// CopyUnit returns an input prefilled from an existing unit with a marked
// name. No write happens; the caller decides whether to create the copy.
func (a *API) CopyUnit(ctx context.Context, id uuid.UUID) (ITUnitInput, error) {
	unit, err := a.GetUnit(ctx, id)
	if err != nil {
		return ITUnitInput{}, err
	}
	return ITUnitInput{
		Name:          copyName(unit.Name),
		ContactPerson: unit.ContactPerson,
		ContactEmail:  unit.ContactEmail,
		TotalFTE:      unit.TotalFTE,
		BudgetAmount:  unit.BudgetAmount,
		Notes:         unit.Notes,
	}, nil
}

// ListUnits returns IT units matching the filter, in insertion order unless
// a sort key is given.
func (a *API) ListUnits(ctx context.Context, f ListFilter) ([]ITUnit, error) {
	q := a.store.ORM.WithContext(ctx).Model(&unitModel{})
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		q = q.Where("name ILIKE ? OR notes ILIKE ?", pattern, pattern)
	}
	if f.MinCost != nil {
		q = q.Where("budget_amount >= ?", *f.MinCost)
	}
	if f.MaxCost != nil {
		q = q.Where("budget_amount <= ?", *f.MaxCost)
	}
	q = applySort(q, f.Sort, "budget_amount")

	var models []unitModel
	if err := q.Find(&models).Error; err != nil {
		return nil, wrapStore(err)
	}

	units := make([]ITUnit, 0, len(models))
	for _, m := range models {
		units = append(units, m.toAPI())
	}
	return units, nil
}

func copyName(name string) string {
	return "Copy of " + name
}

// applySort orders a list query. The zero sort key preserves insertion
// order.
func applySort(q *gorm.DB, sort, costColumn string) *gorm.DB {
	switch sort {
	case "name":
		return q.Order("name ASC")
	case "cost":
		return q.Order(costColumn + " ASC")
	default:
		return q.Order("created_at ASC")
	}
}
