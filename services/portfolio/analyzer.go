package portfolio

import (
	"context"
	"sort"
	"strings"

	"portfoliod/pkg/db"
)

// Flag kinds produced by the consolidation analyzer.
const (
	FlagDuplicate = "duplicate"
	FlagSimilar   = "similar"
)

// FlagMember identifies one record inside a consolidation group.
type FlagMember struct {
	ID         string `json:"id"`
	EntityType string `json:"entity_type"`
	Name       string `json:"name"`
	UnitID     string `json:"unit_id,omitempty"`
	UnitName   string `json:"unit_name,omitempty"`
}

// ConsolidationFlag marks a group of applications and services worth
// reviewing for consolidation.
type ConsolidationFlag struct {
	Kind    string       `json:"kind"`
	Key     string       `json:"key"`
	Members []FlagMember `json:"members"`
}

type analyzerRecord struct {
	ID         string  `db:"id"`
	EntityType string  `db:"entity_type"`
	Name       string  `db:"name"`
	Category   string  `db:"category"`
	UnitID     *string `db:"unit_id"`
	UnitName   *string `db:"unit_name"`
}

const analyzerQuery = `
SELECT a.id::text AS id, 'application' AS entity_type, a.name, a.category,
       a.unit_id::text AS unit_id, u.name AS unit_name
FROM applications a
LEFT JOIN it_units u ON u.id = a.unit_id
UNION ALL
SELECT s.id::text AS id, 'it_service' AS entity_type, s.name, s.category,
       s.unit_id::text AS unit_id, u.name AS unit_name
FROM it_services s
LEFT JOIN it_units u ON u.id = s.unit_id`

// ConsolidationFlags analyzes the current applications and services and
// returns duplicate and similar groups. Each call reads fresh state.
func (a *API) ConsolidationFlags(ctx context.Context) ([]ConsolidationFlag, error) {
	var records []analyzerRecord
	if err := db.Select(ctx, a.store.DB, &records, analyzerQuery); err != nil {
		return nil, wrapStore(err)
	}
	return consolidate(records), nil
}

// normalizeName case-folds, trims, and collapses internal whitespace so
// "PACS Viewer" and " pacs  viewer " group together.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func flagMember(r analyzerRecord) FlagMember {
	m := FlagMember{
		ID:         r.ID,
		EntityType: r.EntityType,
		Name:       r.Name,
	}
	if r.UnitID != nil {
		m.UnitID = *r.UnitID
	}
	if r.UnitName != nil {
		m.UnitName = *r.UnitName
	}
	return m
}

// consolidate is the pure grouping core of the analyzer.
func consolidate(records []analyzerRecord) []ConsolidationFlag {
	byName := make(map[string][]analyzerRecord)
	byCategory := make(map[string][]analyzerRecord)
	for _, r := range records {
		if key := normalizeName(r.Name); key != "" {
			byName[key] = append(byName[key], r)
		}
		if r.Category != "" {
			byCategory[r.Category] = append(byCategory[r.Category], r)
		}
	}

	var flags []ConsolidationFlag

	for key, group := range byName {
		if len(group) < 2 {
			continue
		}
		units := make(map[string]struct{})
		for _, r := range group {
			unitID := ""
			if r.UnitID != nil {
				unitID = *r.UnitID
			}
			units[unitID] = struct{}{}
		}
		if len(units) < 2 {
			continue
		}
		flags = append(flags, buildFlag(FlagDuplicate, key, group))
	}

	for key, group := range byCategory {
		if len(group) < 2 {
			continue
		}
		names := make(map[string]struct{})
		for _, r := range group {
			names[normalizeName(r.Name)] = struct{}{}
		}
		if len(names) < 2 {
			continue
		}
		flags = append(flags, buildFlag(FlagSimilar, key, group))
	}

	sort.Slice(flags, func(i, j int) bool {
		if len(flags[i].Members) != len(flags[j].Members) {
			return len(flags[i].Members) > len(flags[j].Members)
		}
		return flags[i].Key < flags[j].Key
	})
	return flags
}

func buildFlag(kind, key string, group []analyzerRecord) ConsolidationFlag {
	members := make([]FlagMember, 0, len(group))
	for _, r := range group {
		members = append(members, flagMember(r))
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Name != members[j].Name {
			return members[i].Name < members[j].Name
		}
		return members[i].ID < members[j].ID
	})
	return ConsolidationFlag{Kind: kind, Key: key, Members: members}
}
