package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"portfoliod/pkg/db"
)

// optionRefs maps each option category to the entity columns that may
// reference its values. RemoveOption counts live references across these
// columns before allowing a deletion.
var optionRefs = map[string][]struct {
	table  string
	column string
}{
	OptionVendor:              {{"applications", "vendor"}, {"infrastructure", "vendor"}},
	OptionApplicationCategory: {{"applications", "category"}},
	OptionApplicationType:     {{"applications", "service_type"}},
	OptionInfrastructureType:  {{"infrastructure", "type"}},
	OptionAssetStatus:         {{"infrastructure", "status"}},
	OptionServiceCategory:     {{"it_services", "category"}},
	OptionServiceStatus:       {{"it_services", "status"}},
	OptionSLALevel:            {{"it_services", "sla_level"}},
	OptionServiceMethod:       {{"it_services", "service_method"}},
}

// ListOptions returns the configured values of one option category.
func (a *API) ListOptions(ctx context.Context, category string) ([]SettingOption, error) {
	if _, ok := optionCategories[category]; !ok {
		var v violations
		v.add("category", fmt.Sprintf("unknown option category %q", category))
		return nil, v.err()
	}

	var models []optionModel
	err := a.store.ORM.WithContext(ctx).
		Where("category = ?", category).
		Order("value ASC").
		Find(&models).Error
	if err != nil {
		return nil, wrapStore(err)
	}

	options := make([]SettingOption, 0, len(models))
	for _, m := range models {
		options = append(options, m.toAPI())
	}
	return options, nil
}

// AddOption adds a value to an option category. Leading and trailing
// whitespace is stripped so the stored value matches what entity fields
// validate against.
func (a *API) AddOption(ctx context.Context, actor, category, value string) (SettingOption, error) {
	value = strings.TrimSpace(value)

	var v violations
	if _, ok := optionCategories[category]; !ok {
		v.add("category", fmt.Sprintf("unknown option category %q", category))
	}
	checkRequired(&v, "value", value)
	if err := v.err(); err != nil {
		return SettingOption{}, err
	}

	var existing optionModel
	err := a.store.ORM.WithContext(ctx).
		Where("category = ? AND value = ?", category, value).
		First(&existing).Error
	switch {
	case err == nil:
		v.add("value", fmt.Sprintf("%q already exists in category %q", value, category))
		return SettingOption{}, v.err()
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return SettingOption{}, wrapStore(err)
	}

	model := optionModel{
		ID:        uuid.New(),
		Category:  category,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.ORM.WithContext(ctx).Create(&model).Error; err != nil {
		return SettingOption{}, wrapStore(err)
	}

	a.recordAudit(ctx, actor, ActionCreate, EntitySettingOption, model.ID.String(), value, map[string]any{
		"category": category,
		"value":    value,
	})

	return model.toAPI(), nil
}

// RemoveOption deletes a value from an option category. Removal is blocked
// with InUseError while any live entity still references the value; the
// caller must reassign or delete dependents first.
func (a *API) RemoveOption(ctx context.Context, actor, category, value string) error {
	if _, ok := optionCategories[category]; !ok {
		var v violations
		v.add("category", fmt.Sprintf("unknown option category %q", category))
		return v.err()
	}

	var model optionModel
	err := a.store.ORM.WithContext(ctx).
		Where("category = ? AND value = ?", category, value).
		First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &NotFoundError{EntityType: EntitySettingOption, ID: category + "/" + value}
	case err != nil:
		return wrapStore(err)
	}

	refs, err := a.countOptionRefs(ctx, category, value)
	if err != nil {
		return err
	}
	if refs > 0 {
		return &InUseError{Category: category, Value: value, Refs: refs}
	}

	if err := a.store.ORM.WithContext(ctx).Delete(&optionModel{}, "id = ?", model.ID).Error; err != nil {
		return wrapStore(err)
	}

	a.recordAudit(ctx, actor, ActionDelete, EntitySettingOption, model.ID.String(), value, map[string]any{
		"category": category,
		"value":    value,
	})

	return nil
}

func (a *API) countOptionRefs(ctx context.Context, category, value string) (int64, error) {
	var total int64
	for _, ref := range optionRefs[category] {
		var count int64
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, ref.table, ref.column)
		if err := db.Get(ctx, a.store.DB, &count, query, value); err != nil {
			return 0, wrapStore(err)
		}
		total += count
	}
	return total, nil
}
