package portfolio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"portfoliod/pkg/db"
)

var (
	testDBOnce sync.Once
	testDBDSN  string
	testDBErr  error
)

// setupAPI starts a shared PostgreSQL container (once per test run), applies
// the migrations, and returns an API wired to it. Tests share the database,
// so every test uses unique entity names and asserts on its own ids.
func setupAPI(t *testing.T) *API {
	t.Helper()
	if testing.Short() {
		t.Skip("store tests need docker")
	}

	testDBOnce.Do(func() {
		testDBDSN, testDBErr = startPostgresAndMigrate()
	})
	if testDBErr != nil {
		t.Skipf("postgres container unavailable: %v", testDBErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, testDBDSN)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	orm, err := gorm.Open(postgres.Open(testDBDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}

	api, err := New(&Store{DB: pool, ORM: orm}, log.New(io.Discard, "", 0), Config{
		AllowedEmails: []string{"admin@example.org"},
	})
	if err != nil {
		t.Fatalf("new api: %v", err)
	}
	return api
}

func startPostgresAndMigrate() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := db.Open(ctx, dsn)
	if err != nil {
		return "", fmt.Errorf("open pool: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return "", fmt.Errorf("migrate: %w", err)
	}
	return dsn, nil
}

const testActor = "admin@example.org"

func uniqueName(prefix string) string {
	return prefix + " " + uuid.NewString()[:8]
}

func auditRecordsFor(t *testing.T, api *API, entityID string) []auditModel {
	t.Helper()
	var models []auditModel
	err := api.store.ORM.Where("entity_id = ?", entityID).Order("id ASC").Find(&models).Error
	if err != nil {
		t.Fatalf("load audit records: %v", err)
	}
	return models
}

func TestCreateUnitWritesOneAuditRecord(t *testing.T) {
	api := setupAPI(t)
	ctx := context.Background()

	name := uniqueName("Radiology IT")
	unit, err := api.CreateUnit(ctx, testActor, ITUnitInput{Name: name, TotalFTE: 4})
	if err != nil {
		t.Fatalf("CreateUnit() error = %v", err)
	}

	records := auditRecordsFor(t, api, unit.ID.String())
	if len(records) != 1 {
		t.Fatalf("audit records = %d, want 1", len(records))
	}
	record := records[0]
	if record.Action != ActionCreate {
		t.Errorf("action = %q, want %q", record.Action, ActionCreate)
	}
	if record.EntityType != EntityITUnit {
		t.Errorf("entity_type = %q, want %q", record.EntityType, EntityITUnit)
	}
	if record.EntityName != name {
		t.Errorf("entity_name = %q, want %q", record.EntityName, name)
	}
	if record.Actor != testActor {
		t.Errorf("actor = %q, want %q", record.Actor, testActor)
	}
	if record.Details["snapshot"] == nil {
		t.Errorf("details[snapshot] missing, details = %v", record.Details)
	}
}

func TestNoOpUpdateWritesNothing(t *testing.T) {
	api := setupAPI(t)
	ctx := context.Background()

	name := uniqueName("Service Desk")
	unit, err := api.CreateUnit(ctx, testActor, ITUnitInput{Name: name, TotalFTE: 2})
	if err != nil {
		t.Fatalf("CreateUnit() error = %v", err)
	}

	fte := unit.TotalFTE
	updated, err := api.UpdateUnit(ctx, testActor, unit.ID, ITUnitUpdate{Name: &name, TotalFTE: &fte})
	if err != nil {
		t.Fatalf("UpdateUnit() error = %v", err)
	}
	if !updated.UpdatedAt.Equal(unit.UpdatedAt) {
		t.Errorf("updated_at changed on no-op update: %v -> %v", unit.UpdatedAt, updated.UpdatedAt)
	}

	records := auditRecordsFor(t, api, unit.ID.String())
	if len(records) != 1 {
		t.Fatalf("audit records after no-op update = %d, want 1 (the create)", len(records))
	}
}

func TestChangedUpdateWritesDiff(t *testing.T) {
	api := setupAPI(t)
	ctx := context.Background()

	unit, err := api.CreateUnit(ctx, testActor, ITUnitInput{Name: uniqueName("EHR Team"), TotalFTE: 3})
	if err != nil {
		t.Fatalf("CreateUnit() error = %v", err)
	}

	fte := 5
	if _, err := api.UpdateUnit(ctx, testActor, unit.ID, ITUnitUpdate{TotalFTE: &fte}); err != nil {
		t.Fatalf("UpdateUnit() error = %v", err)
	}

	records := auditRecordsFor(t, api, unit.ID.String())
	if len(records) != 2 {
		t.Fatalf("audit records = %d, want 2", len(records))
	}
	last := records[len(records)-1]
	if last.Action != ActionUpdate {
		t.Errorf("action = %q, want %q", last.Action, ActionUpdate)
	}
	if last.Details["changes"] == nil {
		t.Errorf("details[changes] missing, details = %v", last.Details)
	}
}

func TestDeleteWithoutConfirmKeepsRecord(t *testing.T) {
	api := setupAPI(t)
	ctx := context.Background()

	unit, err := api.CreateUnit(ctx, testActor, ITUnitInput{Name: uniqueName("Networking")})
	if err != nil {
		t.Fatalf("CreateUnit() error = %v", err)
	}

	err = api.DeleteUnit(ctx, testActor, unit.ID, false)
	if !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("DeleteUnit(confirm=false) error = %v, want ErrConfirmationRequired", err)
	}
	if _, err := api.GetUnit(ctx, unit.ID); err != nil {
		t.Fatalf("GetUnit() after refused delete error = %v, want record intact", err)
	}
	if records := auditRecordsFor(t, api, unit.ID.String()); len(records) != 1 {
		t.Fatalf("audit records after refused delete = %d, want 1 (the create)", len(records))
	}

	if err := api.DeleteUnit(ctx, testActor, unit.ID, true); err != nil {
		t.Fatalf("DeleteUnit(confirm=true) error = %v", err)
	}
	var notFound *NotFoundError
	if _, err := api.GetUnit(ctx, unit.ID); !errors.As(err, &notFound) {
		t.Fatalf("GetUnit() after delete error = %v, want NotFoundError", err)
	}
	records := auditRecordsFor(t, api, unit.ID.String())
	if len(records) != 2 {
		t.Fatalf("audit records after delete = %d, want 2", len(records))
	}
	if got := records[len(records)-1].Action; got != ActionDelete {
		t.Errorf("last action = %q, want %q", got, ActionDelete)
	}
}

func TestAddOptionTrimsValue(t *testing.T) {
	api := setupAPI(t)
	ctx := context.Background()

	value := uniqueName("Imaging")
	opt, err := api.AddOption(ctx, testActor, OptionApplicationCategory, "  "+value+"  ")
	if err != nil {
		t.Fatalf("AddOption() error = %v", err)
	}
	if opt.Value != value {
		t.Fatalf("stored value = %q, want trimmed %q", opt.Value, value)
	}

	_, err = api.AddOption(ctx, testActor, OptionApplicationCategory, value)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("AddOption() duplicate after trim error = %v, want ValidationError", err)
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("duplicate error = %q, want mention of already exists", err)
	}
}

func TestRemoveOptionInUseBlocked(t *testing.T) {
	api := setupAPI(t)
	ctx := context.Background()

	vendor := uniqueName("Epic")
	if _, err := api.AddOption(ctx, testActor, OptionVendor, vendor); err != nil {
		t.Fatalf("AddOption() error = %v", err)
	}

	unit, err := api.CreateUnit(ctx, testActor, ITUnitInput{Name: uniqueName("Clinical Apps")})
	if err != nil {
		t.Fatalf("CreateUnit() error = %v", err)
	}
	app, err := api.CreateApplication(ctx, testActor, ApplicationInput{
		Name:   uniqueName("PACS Viewer"),
		UnitID: &unit.ID,
		Vendor: vendor,
	})
	if err != nil {
		t.Fatalf("CreateApplication() error = %v", err)
	}

	var inUse *InUseError
	err = api.RemoveOption(ctx, testActor, OptionVendor, vendor)
	if !errors.As(err, &inUse) {
		t.Fatalf("RemoveOption() error = %v, want InUseError", err)
	}
	if inUse.Refs < 1 {
		t.Errorf("refs = %d, want >= 1", inUse.Refs)
	}

	if err := api.DeleteApplication(ctx, testActor, app.ID, true); err != nil {
		t.Fatalf("DeleteApplication() error = %v", err)
	}
	if err := api.RemoveOption(ctx, testActor, OptionVendor, vendor); err != nil {
		t.Fatalf("RemoveOption() after dependent delete error = %v", err)
	}
}
