package portfolio

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// exportEntities maps route segments to audit entity types.
var exportEntities = map[string]string{
	"units":          EntityITUnit,
	"applications":   EntityApplication,
	"infrastructure": EntityInfrastructure,
	"services":       EntityITService,
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatUUIDPtr(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func unitCSVHeader() []string {
	return []string{"id", "name", "contact_person", "contact_email", "total_fte", "budget_amount", "notes", "created_at", "updated_at"}
}

func unitCSVRow(u ITUnit) []string {
	return []string{
		u.ID.String(),
		u.Name,
		u.ContactPerson,
		u.ContactEmail,
		strconv.Itoa(u.TotalFTE),
		formatFloat(u.BudgetAmount),
		u.Notes,
		u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		u.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func applicationCSVHeader() []string {
	return []string{"id", "name", "unit_id", "vendor", "category", "service_type", "internal", "annual_cost", "renewal_date", "integrations", "description", "service_owner", "created_at", "updated_at"}
}

func applicationCSVRow(app Application) []string {
	return []string{
		app.ID.String(),
		app.Name,
		formatUUIDPtr(app.UnitID),
		app.Vendor,
		app.Category,
		app.ServiceType,
		strconv.FormatBool(app.Internal),
		formatFloat(app.AnnualCost),
		app.RenewalDate,
		app.Integrations,
		app.Description,
		app.ServiceOwner,
		app.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		app.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func infrastructureCSVHeader() []string {
	return []string{"id", "name", "unit_id", "vendor", "type", "location", "status", "purchase_date", "warranty_expiry", "annual_maintenance_cost", "description", "created_at", "updated_at"}
}

func infrastructureCSVRow(asset Infrastructure) []string {
	return []string{
		asset.ID.String(),
		asset.Name,
		formatUUIDPtr(asset.UnitID),
		asset.Vendor,
		asset.Type,
		asset.Location,
		asset.Status,
		asset.PurchaseDate,
		asset.WarrantyExpiry,
		formatFloat(asset.AnnualMaintenanceCost),
		asset.Description,
		asset.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		asset.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func serviceCSVHeader() []string {
	return []string{"id", "name", "unit_id", "category", "status", "service_owner", "fte_count", "sla_level", "service_method", "budget_allocation", "dependencies", "description", "created_at", "updated_at"}
}

func serviceCSVRow(svc ITService) []string {
	return []string{
		svc.ID.String(),
		svc.Name,
		formatUUIDPtr(svc.UnitID),
		svc.Category,
		svc.Status,
		svc.ServiceOwner,
		strconv.Itoa(svc.FTECount),
		svc.SLALevel,
		svc.ServiceMethod,
		formatFloat(svc.BudgetAllocation),
		svc.Dependencies,
		svc.Description,
		svc.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		svc.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// WriteCSV streams one entity collection as CSV, applying the same filters
// and ordering as the list endpoints.
func (a *API) WriteCSV(ctx context.Context, entity string, f ListFilter, w io.Writer) error {
	cw := csv.NewWriter(w)

	switch entity {
	case "units":
		units, err := a.ListUnits(ctx, f)
		if err != nil {
			return err
		}
		if err := cw.Write(unitCSVHeader()); err != nil {
			return err
		}
		for _, u := range units {
			if err := cw.Write(unitCSVRow(u)); err != nil {
				return err
			}
		}
	case "applications":
		apps, err := a.ListApplications(ctx, f)
		if err != nil {
			return err
		}
		if err := cw.Write(applicationCSVHeader()); err != nil {
			return err
		}
		for _, app := range apps {
			if err := cw.Write(applicationCSVRow(app)); err != nil {
				return err
			}
		}
	case "infrastructure":
		assets, err := a.ListInfrastructure(ctx, f)
		if err != nil {
			return err
		}
		if err := cw.Write(infrastructureCSVHeader()); err != nil {
			return err
		}
		for _, asset := range assets {
			if err := cw.Write(infrastructureCSVRow(asset)); err != nil {
				return err
			}
		}
	case "services":
		services, err := a.ListServices(ctx, f)
		if err != nil {
			return err
		}
		if err := cw.Write(serviceCSVHeader()); err != nil {
			return err
		}
		for _, svc := range services {
			if err := cw.Write(serviceCSVRow(svc)); err != nil {
				return err
			}
		}
	default:
		return errors.New("unknown export entity: " + entity)
	}

	cw.Flush()
	return cw.Error()
}

func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	if _, ok := exportEntities[entity]; !ok {
		respondError(w, http.StatusBadRequest, errors.New("unknown export entity: "+entity))
		return
	}

	f, err := filterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var buf bytes.Buffer
	if err := a.WriteCSV(ctx, entity, f, &buf); err != nil {
		respondOpError(w, err)
		return
	}

	if r.URL.Query().Get("compress") == "zstd" {
		enc, err := zstd.NewWriter(w)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/zstd")
		w.Header().Set("Content-Disposition", "attachment; filename="+entity+".csv.zst")
		if _, err := enc.Write(buf.Bytes()); err != nil {
			a.logger.Printf("ERROR export %s: %v", entity, err)
		}
		if err := enc.Close(); err != nil {
			a.logger.Printf("ERROR export %s: %v", entity, err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+entity+".csv")
	if _, err := w.Write(buf.Bytes()); err != nil {
		a.logger.Printf("ERROR export %s: %v", entity, err)
	}
}
