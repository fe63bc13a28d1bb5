package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

type ITUnit struct {
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

func (ITUnit) TableName() string { return "it_units" }

type Application struct {
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
	Unit         ITUnit     `gorm:"foreignKey:UnitID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (Application) TableName() string { return "applications" }

type Infrastructure struct {
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
	Unit                  ITUnit     `gorm:"foreignKey:UnitID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (Infrastructure) TableName() string { return "infrastructure" }

type ITService struct {
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
	Unit             ITUnit     `gorm:"foreignKey:UnitID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (ITService) TableName() string { return "it_services" }

type SettingOption struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Category  string    `gorm:"type:text;not null;uniqueIndex:idx_setting_options_category_value"`
	Value     string    `gorm:"type:text;not null;uniqueIndex:idx_setting_options_category_value"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (SettingOption) TableName() string { return "setting_options" }

type AuditRecord struct {
	ID         int64             `gorm:"type:bigserial;primaryKey"`
	Actor      string            `gorm:"type:text;not null"`
	Action     string            `gorm:"type:text;not null"`
	EntityType string            `gorm:"type:text;not null;index"`
	EntityID   string            `gorm:"type:text;not null"`
	EntityName string            `gorm:"type:text"`
	Details    datatypes.JSONMap `gorm:"type:jsonb"`
	At         time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (AuditRecord) TableName() string { return "audit_records" }

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).AutoMigrate(
		&ITUnit{},
		&Application{},
		&Infrastructure{},
		&ITService{},
		&SettingOption{},
		&AuditRecord{},
	); err != nil {
		return err
	}

	m := gormDB.WithContext(ctx).Migrator()
	if err := m.CreateConstraint(&Application{}, "Unit"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Infrastructure{}, "Unit"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&ITService{}, "Unit"); err != nil {
		return err
	}

	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	return gormDB.WithContext(ctx).Migrator().DropTable(
		&AuditRecord{},
		&SettingOption{},
		&ITService{},
		&Infrastructure{},
		&Application{},
		&ITUnit{},
	)
}
