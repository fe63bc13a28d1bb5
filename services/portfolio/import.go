package portfolio

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type importSourceKey struct{}

// withImportSource marks a context so audit records written under it carry
// the bulk import source.
func withImportSource(ctx context.Context) context.Context {
	return context.WithValue(ctx, importSourceKey{}, true)
}

func isImportSource(ctx context.Context) bool {
	v, _ := ctx.Value(importSourceKey{}).(bool)
	return v
}

// ImportFailure reports one rejected CSV row.
type ImportFailure struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// ImportResult summarises a bulk CSV import.
type ImportResult struct {
	Created  int             `json:"created"`
	Failures []ImportFailure `json:"failures"`
}

type csvRow struct {
	header map[string]int
	fields []string
}

func (r csvRow) get(name string) string {
	idx, ok := r.header[name]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

func (r csvRow) getFloat(name string) (float64, error) {
	raw := r.get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("invalid " + name + ": " + raw)
	}
	return v, nil
}

func (r csvRow) getInt(name string) (int, error) {
	raw := r.get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid " + name + ": " + raw)
	}
	return v, nil
}

func (r csvRow) getBool(name string) (bool, error) {
	raw := r.get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("invalid " + name + ": " + raw)
	}
	return v, nil
}

func (r csvRow) getUUIDPtr(name string) (*uuid.UUID, error) {
	raw := r.get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.New("invalid " + name + ": " + raw)
	}
	return &id, nil
}

// ImportCSV creates one record per data row through the normal create path,
// so every row is validated and audited like a single create. Rows that fail
// are reported per line and do not stop the rest of the file.
func (a *API) ImportCSV(ctx context.Context, actor, entity string, src io.Reader) (ImportResult, error) {
	create, err := a.importRowFunc(entity)
	if err != nil {
		return ImportResult{}, err
	}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1

	headerFields, err := reader.Read()
	if err != nil {
		return ImportResult{}, errors.New("missing CSV header row")
	}
	header := make(map[string]int, len(headerFields))
	for i, name := range headerFields {
		header[strings.TrimSpace(strings.ToLower(name))] = i
	}
	if _, ok := header["name"]; !ok {
		return ImportResult{}, errors.New("CSV header must contain a name column")
	}

	ctx = withImportSource(ctx)

	result := ImportResult{Failures: []ImportFailure{}}
	line := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			result.Failures = append(result.Failures, ImportFailure{Line: line, Error: err.Error()})
			continue
		}

		if err := create(ctx, actor, csvRow{header: header, fields: fields}); err != nil {
			result.Failures = append(result.Failures, ImportFailure{Line: line, Error: err.Error()})
			continue
		}
		result.Created++
	}

	return result, nil
}

func (a *API) importRowFunc(entity string) (func(context.Context, string, csvRow) error, error) {
	switch entity {
	case "units":
		return func(ctx context.Context, actor string, row csvRow) error {
			fte, err := row.getInt("total_fte")
			if err != nil {
				return err
			}
			budget, err := row.getFloat("budget_amount")
			if err != nil {
				return err
			}
			_, err = a.CreateUnit(ctx, actor, ITUnitInput{
				Name:          row.get("name"),
				ContactPerson: row.get("contact_person"),
				ContactEmail:  row.get("contact_email"),
				TotalFTE:      fte,
				BudgetAmount:  budget,
				Notes:         row.get("notes"),
			})
			return err
		}, nil
	case "applications":
		return func(ctx context.Context, actor string, row csvRow) error {
			unitID, err := row.getUUIDPtr("unit_id")
			if err != nil {
				return err
			}
			internal, err := row.getBool("internal")
			if err != nil {
				return err
			}
			cost, err := row.getFloat("annual_cost")
			if err != nil {
				return err
			}
			_, err = a.CreateApplication(ctx, actor, ApplicationInput{
				Name:         row.get("name"),
				UnitID:       unitID,
				Vendor:       row.get("vendor"),
				Category:     row.get("category"),
				ServiceType:  row.get("service_type"),
				Internal:     internal,
				AnnualCost:   cost,
				RenewalDate:  row.get("renewal_date"),
				Integrations: row.get("integrations"),
				Description:  row.get("description"),
				ServiceOwner: row.get("service_owner"),
			})
			return err
		}, nil
	case "infrastructure":
		return func(ctx context.Context, actor string, row csvRow) error {
			unitID, err := row.getUUIDPtr("unit_id")
			if err != nil {
				return err
			}
			cost, err := row.getFloat("annual_maintenance_cost")
			if err != nil {
				return err
			}
			_, err = a.CreateInfrastructure(ctx, actor, InfrastructureInput{
				Name:                  row.get("name"),
				UnitID:                unitID,
				Vendor:                row.get("vendor"),
				Type:                  row.get("type"),
				Location:              row.get("location"),
				Status:                row.get("status"),
				PurchaseDate:          row.get("purchase_date"),
				WarrantyExpiry:        row.get("warranty_expiry"),
				AnnualMaintenanceCost: cost,
				Description:           row.get("description"),
			})
			return err
		}, nil
	case "services":
		return func(ctx context.Context, actor string, row csvRow) error {
			unitID, err := row.getUUIDPtr("unit_id")
			if err != nil {
				return err
			}
			fte, err := row.getInt("fte_count")
			if err != nil {
				return err
			}
			budget, err := row.getFloat("budget_allocation")
			if err != nil {
				return err
			}
			_, err = a.CreateService(ctx, actor, ITServiceInput{
				Name:             row.get("name"),
				UnitID:           unitID,
				Category:         row.get("category"),
				Status:           row.get("status"),
				ServiceOwner:     row.get("service_owner"),
				FTECount:         fte,
				SLALevel:         row.get("sla_level"),
				ServiceMethod:    row.get("service_method"),
				BudgetAllocation: budget,
				Dependencies:     row.get("dependencies"),
				Description:      row.get("description"),
			})
			return err
		}, nil
	default:
		return nil, errors.New("unknown import entity: " + entity)
	}
}

func (a *API) handleImport(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	if _, ok := exportEntities[entity]; !ok {
		respondError(w, http.StatusBadRequest, errors.New("unknown import entity: "+entity))
		return
	}
	if r.Body == nil {
		respondError(w, http.StatusBadRequest, errors.New("request body required"))
		return
	}
	defer r.Body.Close()

	// Bulk files can exceed the single-operation budget, so the import uses
	// the request deadline from the router instead of withTimeout.
	result, err := a.ImportCSV(r.Context(), actorFromContext(r.Context()), entity, r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
