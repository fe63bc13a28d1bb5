package portfolio

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type unitModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"type:text;uniqueIndex;not null"`
	ContactPerson string    `gorm:"type:text"`
	ContactEmail  string    `gorm:"type:text"`
	TotalFTE      int       `gorm:"type:integer;not null;default:0"`
	BudgetAmount  float64   `gorm:"type:numeric;not null;default:0"`
	Notes         string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt     time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (unitModel) TableName() string { return "it_units" }

func (m unitModel) toAPI() ITUnit {
	return ITUnit{
		ID:            m.ID,
		Name:          m.Name,
		ContactPerson: m.ContactPerson,
		ContactEmail:  m.ContactEmail,
		TotalFTE:      m.TotalFTE,
		BudgetAmount:  m.BudgetAmount,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

type applicationModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name         string     `gorm:"type:text;not null"`
	UnitID       *uuid.UUID `gorm:"type:uuid;index"`
	Vendor       string     `gorm:"type:text"`
	Category     string     `gorm:"type:text;index"`
	ServiceType  string     `gorm:"type:text"`
	Internal     bool       `gorm:"type:boolean;not null;default:false"`
	AnnualCost   float64    `gorm:"type:numeric;not null;default:0"`
	RenewalDate  string     `gorm:"type:text"`
	Integrations string     `gorm:"type:text"`
	Description  string     `gorm:"type:text"`
	ServiceOwner string     `gorm:"type:text"`
	CreatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (applicationModel) TableName() string { return "applications" }

func (m applicationModel) toAPI() Application {
	return Application{
		ID:           m.ID,
		Name:         m.Name,
		UnitID:       m.UnitID,
		Vendor:       m.Vendor,
		Category:     m.Category,
		ServiceType:  m.ServiceType,
		Internal:     m.Internal,
		AnnualCost:   m.AnnualCost,
		RenewalDate:  m.RenewalDate,
		Integrations: m.Integrations,
		Description:  m.Description,
		ServiceOwner: m.ServiceOwner,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type infrastructureModel struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name                  string     `gorm:"type:text;not null"`
	UnitID                *uuid.UUID `gorm:"type:uuid;index"`
	Vendor                string     `gorm:"type:text"`
	Type                  string     `gorm:"type:text;index"`
	Location              string     `gorm:"type:text"`
	Status                string     `gorm:"type:text"`
	PurchaseDate          string     `gorm:"type:text"`
	WarrantyExpiry        string     `gorm:"type:text"`
	AnnualMaintenanceCost float64    `gorm:"type:numeric;not null;default:0"`
	Description           string     `gorm:"type:text"`
	CreatedAt             time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt             time.Time  `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (infrastructureModel) TableName() string { return "infrastructure" }

func (m infrastructureModel) toAPI() Infrastructure {
	return Infrastructure{
		ID:                    m.ID,
		Name:                  m.Name,
		UnitID:                m.UnitID,
		Vendor:                m.Vendor,
		Type:                  m.Type,
		Location:              m.Location,
		Status:                m.Status,
		PurchaseDate:          m.PurchaseDate,
		WarrantyExpiry:        m.WarrantyExpiry,
		AnnualMaintenanceCost: m.AnnualMaintenanceCost,
		Description:           m.Description,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

type serviceModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name             string     `gorm:"type:text;not null"`
	UnitID           *uuid.UUID `gorm:"type:uuid;index"`
	Category         string     `gorm:"type:text;index"`
	Status           string     `gorm:"type:text"`
	ServiceOwner     string     `gorm:"type:text"`
	FTECount         int        `gorm:"type:integer;not null;default:0"`
	SLALevel         string     `gorm:"type:text"`
	ServiceMethod    string     `gorm:"type:text"`
	BudgetAllocation float64    `gorm:"type:numeric;not null;default:0"`
	Dependencies     string     `gorm:"type:text"`
	Description      string     `gorm:"type:text"`
	CreatedAt        time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (serviceModel) TableName() string { return "it_services" }

func (m serviceModel) toAPI() ITService {
	return ITService{
		ID:               m.ID,
		Name:             m.Name,
		UnitID:           m.UnitID,
		Category:         m.Category,
		Status:           m.Status,
		ServiceOwner:     m.ServiceOwner,
		FTECount:         m.FTECount,
		SLALevel:         m.SLALevel,
		ServiceMethod:    m.ServiceMethod,
		BudgetAllocation: m.BudgetAllocation,
		Dependencies:     m.Dependencies,
		Description:      m.Description,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

type optionModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Category  string    `gorm:"type:text;not null;uniqueIndex:idx_setting_options_category_value"`
	Value     string    `gorm:"type:text;not null;uniqueIndex:idx_setting_options_category_value"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (optionModel) TableName() string { return "setting_options" }

func (m optionModel) toAPI() SettingOption {
	return SettingOption{
		ID:        m.ID,
		Category:  m.Category,
		Value:     m.Value,
		CreatedAt: m.CreatedAt,
	}
}

type auditModel struct {
	ID         int64             `gorm:"type:bigserial;primaryKey"`
	Actor      string            `gorm:"type:text;not null"`
	Action     string            `gorm:"type:text;not null"`
	EntityType string            `gorm:"type:text;not null;index"`
	EntityID   string            `gorm:"type:text;not null"`
	EntityName string            `gorm:"type:text"`
	Details    datatypes.JSONMap `gorm:"type:jsonb"`
	At         time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (auditModel) TableName() string { return "audit_records" }

func (m auditModel) toAPI() AuditRecord {
	return AuditRecord{
		ID:         m.ID,
		Actor:      m.Actor,
		Action:     m.Action,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		EntityName: m.EntityName,
		Details:    mapFromJSONMap(m.Details),
		At:         m.At,
	}
}

func mapFromJSONMap(src datatypes.JSONMap) map[string]any {
	if src == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func toJSONMap(src map[string]any) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	if src == nil {
		return out
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}
