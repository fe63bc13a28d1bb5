package portfolio

import (
	"time"

	"github.com/google/uuid"
)

// Entity type identifiers used in audit records, routes, and exports.
const (
	EntityITUnit         = "it_unit"
	EntityApplication    = "application"
	EntityInfrastructure = "infrastructure"
	EntityITService      = "it_service"
	EntitySettingOption  = "setting_option"
)

// Audit actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// ITUnit models an internal team or department that owns applications,
// infrastructure, and services.
type ITUnit struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	ContactEmail  string    `json:"contact_email"`
	TotalFTE      int       `json:"total_fte"`
	BudgetAmount  float64   `json:"budget_amount"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Application models a software product owned by an IT unit.
type Application struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	UnitID       *uuid.UUID `json:"unit_id"`
	Vendor       string     `json:"vendor"`
	Category     string     `json:"category"`
	ServiceType  string     `json:"service_type"`
	Internal     bool       `json:"internal"`
	AnnualCost   float64    `json:"annual_cost"`
	RenewalDate  string     `json:"renewal_date"`
	Integrations string     `json:"integrations"`
	Description  string     `json:"description"`
	ServiceOwner string     `json:"service_owner"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Infrastructure models a physical or hosted asset.
type Infrastructure struct {
	ID                    uuid.UUID  `json:"id"`
	Name                  string     `json:"name"`
	UnitID                *uuid.UUID `json:"unit_id"`
	Vendor                string     `json:"vendor"`
	Type                  string     `json:"type"`
	Location              string     `json:"location"`
	Status                string     `json:"status"`
	PurchaseDate          string     `json:"purchase_date"`
	WarrantyExpiry        string     `json:"warranty_expiry"`
	AnnualMaintenanceCost float64    `json:"annual_maintenance_cost"`
	Description           string     `json:"description"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// ITService models an internally provided service.
type ITService struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	UnitID           *uuid.UUID `json:"unit_id"`
	Category         string     `json:"category"`
	Status           string     `json:"status"`
	ServiceOwner     string     `json:"service_owner"`
	FTECount         int        `json:"fte_count"`
	SLALevel         string     `json:"sla_level"`
	ServiceMethod    string     `json:"service_method"`
	BudgetAllocation float64    `json:"budget_allocation"`
	Dependencies     string     `json:"dependencies"`
	Description      string     `json:"description"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// SettingOption defines one valid choice within an option category.
type SettingOption struct {
	ID        uuid.UUID `json:"id"`
	Category  string    `json:"category"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditRecord is an immutable log entry describing one mutation.
type AuditRecord struct {
	ID         int64          `json:"id"`
	Actor      string         `json:"actor"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	EntityName string         `json:"entity_name"`
	Details    map[string]any `json:"details"`
	At         time.Time      `json:"at"`
}

// ITUnitInput carries the writable fields of an IT unit.
type ITUnitInput struct {
	Name          string  `json:"name"`
	ContactPerson string  `json:"contact_person"`
	ContactEmail  string  `json:"contact_email"`
	TotalFTE      int     `json:"total_fte"`
	BudgetAmount  float64 `json:"budget_amount"`
	Notes         string  `json:"notes"`
}

// ITUnitUpdate carries a partial update; nil fields are left unchanged.
type ITUnitUpdate struct {
	Name          *string  `json:"name"`
	ContactPerson *string  `json:"contact_person"`
	ContactEmail  *string  `json:"contact_email"`
	TotalFTE      *int     `json:"total_fte"`
	BudgetAmount  *float64 `json:"budget_amount"`
	Notes         *string  `json:"notes"`
}

// ApplicationInput carries the writable fields of an application.
type ApplicationInput struct {
	Name         string     `json:"name"`
	UnitID       *uuid.UUID `json:"unit_id"`
	Vendor       string     `json:"vendor"`
	Category     string     `json:"category"`
	ServiceType  string     `json:"service_type"`
	Internal     bool       `json:"internal"`
	AnnualCost   float64    `json:"annual_cost"`
	RenewalDate  string     `json:"renewal_date"`
	Integrations string     `json:"integrations"`
	Description  string     `json:"description"`
	ServiceOwner string     `json:"service_owner"`
}

// ApplicationUpdate carries a partial update; nil fields are left unchanged.
type ApplicationUpdate struct {
	Name         *string     `json:"name"`
	UnitID       *uuid.UUID  `json:"unit_id"`
	Vendor       *string     `json:"vendor"`
	Category     *string     `json:"category"`
	ServiceType  *string     `json:"service_type"`
	Internal     *bool       `json:"internal"`
	AnnualCost   *float64    `json:"annual_cost"`
	RenewalDate  *string     `json:"renewal_date"`
	Integrations *string     `json:"integrations"`
	Description  *string     `json:"description"`
	ServiceOwner *string     `json:"service_owner"`
}

// InfrastructureInput carries the writable fields of an asset.
type InfrastructureInput struct {
	Name                  string     `json:"name"`
	UnitID                *uuid.UUID `json:"unit_id"`
	Vendor                string     `json:"vendor"`
	Type                  string     `json:"type"`
	Location              string     `json:"location"`
	Status                string     `json:"status"`
	PurchaseDate          string     `json:"purchase_date"`
	WarrantyExpiry        string     `json:"warranty_expiry"`
	AnnualMaintenanceCost float64    `json:"annual_maintenance_cost"`
	Description           string     `json:"description"`
}

// InfrastructureUpdate carries a partial update; nil fields are left unchanged.
type InfrastructureUpdate struct {
	Name                  *string    `json:"name"`
	UnitID                *uuid.UUID `json:"unit_id"`
	Vendor                *string    `json:"vendor"`
	Type                  *string    `json:"type"`
	Location              *string    `json:"location"`
	Status                *string    `json:"status"`
	PurchaseDate          *string    `json:"purchase_date"`
	WarrantyExpiry        *string    `json:"warranty_expiry"`
	AnnualMaintenanceCost *float64   `json:"annual_maintenance_cost"`
	Description           *string    `json:"description"`
}

// ITServiceInput carries the writable fields of an IT service.
type ITServiceInput struct {
	Name             string     `json:"name"`
	UnitID           *uuid.UUID `json:"unit_id"`
	Category         string     `json:"category"`
	Status           string     `json:"status"`
	ServiceOwner     string     `json:"service_owner"`
	FTECount         int        `json:"fte_count"`
	SLALevel         string     `json:"sla_level"`
	ServiceMethod    string     `json:"service_method"`
	BudgetAllocation float64    `json:"budget_allocation"`
	Dependencies     string     `json:"dependencies"`
	Description      string     `json:"description"`
}

// ITServiceUpdate carries a partial update; nil fields are left unchanged.
type ITServiceUpdate struct {
	Name             *string    `json:"name"`
	UnitID           *uuid.UUID `json:"unit_id"`
	Category         *string    `json:"category"`
	Status           *string    `json:"status"`
	ServiceOwner     *string    `json:"service_owner"`
	FTECount         *int       `json:"fte_count"`
	SLALevel         *string    `json:"sla_level"`
	ServiceMethod    *string    `json:"service_method"`
	BudgetAllocation *float64   `json:"budget_allocation"`
	Dependencies     *string    `json:"dependencies"`
	Description      *string    `json:"description"`
}

// ListFilter narrows list and export results.
type ListFilter struct {
	Query    string
	Category string
	UnitID   *uuid.UUID
	MinCost  *float64
	MaxCost  *float64
	Sort     string
}
