package portfolio

import (
	"context"
	"net/http"

	"portfoliod/pkg/db"
)

// Dashboard aggregates portfolio counts, cost totals, and consolidation
// flags for the overview page.
type Dashboard struct {
	UnitCount            int64               `json:"unit_count"`
	ApplicationCount     int64               `json:"application_count"`
	InfrastructureCount  int64               `json:"infrastructure_count"`
	ServiceCount         int64               `json:"service_count"`
	TotalAnnualCost      float64             `json:"total_annual_cost"`
	TotalMaintenanceCost float64             `json:"total_maintenance_cost"`
	TotalBudget          float64             `json:"total_budget_allocation"`
	Flags                []ConsolidationFlag `json:"flags"`
}

const dashboardQuery = `
SELECT
  (SELECT COUNT(*) FROM it_units)                                    AS unit_count,
  (SELECT COUNT(*) FROM applications)                                AS application_count,
  (SELECT COUNT(*) FROM infrastructure)                              AS infrastructure_count,
  (SELECT COUNT(*) FROM it_services)                                 AS service_count,
  (SELECT COALESCE(SUM(annual_cost), 0) FROM applications)           AS total_annual_cost,
  (SELECT COALESCE(SUM(annual_maintenance_cost), 0) FROM infrastructure) AS total_maintenance_cost,
  (SELECT COALESCE(SUM(budget_allocation), 0) FROM it_services)      AS total_budget`

// GetDashboard returns current aggregates. Reads the latest committed state
// on every call.
func (a *API) GetDashboard(ctx context.Context) (Dashboard, error) {
	var row struct {
		UnitCount            int64   `db:"unit_count"`
		ApplicationCount     int64   `db:"application_count"`
		InfrastructureCount  int64   `db:"infrastructure_count"`
		ServiceCount         int64   `db:"service_count"`
		TotalAnnualCost      float64 `db:"total_annual_cost"`
		TotalMaintenanceCost float64 `db:"total_maintenance_cost"`
		TotalBudget          float64 `db:"total_budget"`
	}
	if err := db.Get(ctx, a.store.DB, &row, dashboardQuery); err != nil {
		return Dashboard{}, wrapStore(err)
	}

	flags, err := a.ConsolidationFlags(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	if flags == nil {
		flags = []ConsolidationFlag{}
	}

	return Dashboard{
		UnitCount:            row.UnitCount,
		ApplicationCount:     row.ApplicationCount,
		InfrastructureCount:  row.InfrastructureCount,
		ServiceCount:         row.ServiceCount,
		TotalAnnualCost:      row.TotalAnnualCost,
		TotalMaintenanceCost: row.TotalMaintenanceCost,
		TotalBudget:          row.TotalBudget,
		Flags:                flags,
	}, nil
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	board, err := a.GetDashboard(ctx)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, board)
}
