package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Option categories recognised by the settings manager. Entity category
// fields are validated against the live option rows of these sets.
const (
	OptionVendor              = "vendor"
	OptionApplicationCategory = "application_category"
	OptionApplicationType     = "application_type"
	OptionInfrastructureType  = "infrastructure_type"
	OptionAssetStatus         = "asset_status"
	OptionServiceCategory     = "service_category"
	OptionServiceStatus       = "service_status"
	OptionSLALevel            = "sla_level"
	OptionServiceMethod       = "service_method"
)

var optionCategories = map[string]struct{}{
	OptionVendor:              {},
	OptionApplicationCategory: {},
	OptionApplicationType:     {},
	OptionInfrastructureType:  {},
	OptionAssetStatus:         {},
	OptionServiceCategory:     {},
	OptionServiceStatus:       {},
	OptionSLALevel:            {},
	OptionServiceMethod:       {},
}

// optionSets is a snapshot of the configured choice sets, loaded once per
// operation and handed to the validator rather than queried mid-validation.
type optionSets map[string]map[string]struct{}

func (s optionSets) contains(category, value string) bool {
	values, ok := s[category]
	if !ok {
		return false
	}
	_, ok = values[value]
	return ok
}

// loadOptionSets reads the current values of the requested categories.
func (a *API) loadOptionSets(ctx context.Context, categories ...string) (optionSets, error) {
	var models []optionModel
	err := a.store.ORM.WithContext(ctx).
		Where("category IN ?", categories).
		Find(&models).Error
	if err != nil {
		return nil, wrapStore(err)
	}

	sets := make(optionSets, len(categories))
	for _, category := range categories {
		sets[category] = map[string]struct{}{}
	}
	for _, m := range models {
		sets[m.Category][m.Value] = struct{}{}
	}
	return sets, nil
}

// checkOption validates an optional option-backed field. Empty values pass;
// a non-empty value must be a member of its category's current option set.
func checkOption(v *violations, sets optionSets, field, category, value string) {
	if value == "" {
		return
	}
	if !sets.contains(category, value) {
		v.add(field, fmt.Sprintf("%q is not a configured %s option", value, category))
	}
}

// checkUnitRef validates that a referenced IT unit exists.
func (a *API) checkUnitRef(ctx context.Context, v *violations, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	var model unitModel
	err := a.store.ORM.WithContext(ctx).Where("id = ?", *id).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		v.add("unit_id", fmt.Sprintf("it_unit %s does not exist", id))
		return nil
	case err != nil:
		return wrapStore(err)
	default:
		return nil
	}
}

func checkRequired(v *violations, field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "is required")
	}
}
