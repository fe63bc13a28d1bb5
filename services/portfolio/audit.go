package portfolio

import (
	"context"
	"reflect"
	"time"
)

// recordAudit appends an immutable audit record after a mutation has durably
// succeeded. The audit write is best-effort: a failure here is logged but
// never rolls back or fails the data mutation.
func (a *API) recordAudit(ctx context.Context, actor, action, entityType, entityID, entityName string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	if isImportSource(ctx) {
		details["source"] = "bulk_import"
	}

	record := auditModel{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    toJSONMap(details),
		At:         time.Now().UTC(),
	}
	if err := a.store.ORM.WithContext(ctx).Create(&record).Error; err != nil {
		a.logger.Printf("ERROR write audit record for %s %s %s: %v", action, entityType, entityID, err)
		return
	}

	countMutation(entityType, action)

	a.publishJSON(auditRecordedTopic, map[string]any{
		"actor":       actor,
		"action":      action,
		"entity_type": entityType,
		"entity_id":   entityID,
		"entity_name": entityName,
	})
}

// publishJSON emits an event to the bus when one is configured. Publishing
// is best-effort; the mutation has already committed.
func (a *API) publishJSON(subject string, payload map[string]any) {
	if a.store.Bus == nil {
		return
	}

	ctx, cancel := withTimeout(context.Background())
	defer cancel()

	if err := a.store.Bus.Publish(ctx, subject, payload); err != nil {
		a.logger.Printf("WARN publish %s: %v", subject, err)
	}
}

// listAudit returns recent audit records, newest first.
func (a *API) listAudit(ctx context.Context, entityType string, limit int) ([]AuditRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	q := a.store.ORM.WithContext(ctx).Order("id DESC").Limit(limit)
	if entityType != "" {
		q = q.Where("entity_type = ?", entityType)
	}

	var models []auditModel
	if err := q.Find(&models).Error; err != nil {
		return nil, wrapStore(err)
	}

	records := make([]AuditRecord, 0, len(models))
	for _, m := range models {
		records = append(records, m.toAPI())
	}
	return records, nil
}

// computeDiff returns old/new pairs for every field that differs between
// two snapshots. Fields present in only one snapshot appear with a nil
// counterpart.
func computeDiff(previous, current map[string]any) map[string]map[string]any {
	if previous == nil {
		previous = map[string]any{}
	}
	if current == nil {
		current = map[string]any{}
	}

	diff := make(map[string]map[string]any)

	for key, prevVal := range previous {
		curVal, ok := current[key]
		if !ok {
			diff[key] = map[string]any{"old": prevVal, "new": nil}
			continue
		}
		if !reflect.DeepEqual(prevVal, curVal) {
			diff[key] = map[string]any{"old": prevVal, "new": curVal}
		}
	}

	for key, curVal := range current {
		if _, seen := previous[key]; seen {
			continue
		}
		diff[key] = map[string]any{"old": nil, "new": curVal}
	}

	return diff
}
