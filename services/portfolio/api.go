package portfolio

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"portfoliod/pkg/bus"
)

const auditRecordedTopic = "portfolio.audit.recorded"

// Store holds external dependencies required by the portfolio layer.
type Store struct {
	DB  *pgxpool.Pool
	ORM *gorm.DB
	Bus *bus.Bus
}

// Config controls runtime behaviour for the portfolio handlers.
type Config struct {
	AllowedEmails []string
}

// API wires dependencies and configuration for the portfolio HTTP handlers
// and core operations.
type API struct {
	store   *Store
	config  Config
	logger  *log.Logger
	allowed map[string]struct{}
}

var mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "portfolio_mutations_total",
	Help: "Count of successful portfolio mutations by entity type and action.",
}, []string{"entity_type", "action"})

// New initialises the portfolio layer.
func New(store *Store, logger *log.Logger, cfg Config) (*API, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if store.DB == nil {
		return nil, errors.New("store DB is required")
	}
	if store.ORM == nil {
		return nil, errors.New("store ORM is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	if len(cfg.AllowedEmails) == 0 {
		return nil, errors.New("at least one allowed email is required")
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedEmails))
	for _, email := range cfg.AllowedEmails {
		normalized := strings.ToLower(strings.TrimSpace(email))
		if normalized == "" {
			continue
		}
		allowed[normalized] = struct{}{}
	}
	if len(allowed) == 0 {
		return nil, errors.New("allowed email list contains no usable entries")
	}

	return &API{
		store:   store,
		config:  cfg,
		logger:  logger,
		allowed: allowed,
	}, nil
}

// Routes constructs the chi router containing all portfolio endpoints.
func (a *API) Routes() (http.Handler, error) {
	if a == nil {
		return nil, errors.New("nil api")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Use(a.requireActor)

		r.Route("/units", func(r chi.Router) {
			r.Post("/", a.handleCreateUnit)
			r.Get("/", a.handleListUnits)
			r.Get("/{id}", a.handleGetUnit)
			r.Patch("/{id}", a.handleUpdateUnit)
			r.Delete("/{id}", a.handleDeleteUnit)
			r.Get("/{id}/copy", a.handleCopyUnit)
		})

		r.Route("/applications", func(r chi.Router) {
			r.Post("/", a.handleCreateApplication)
			r.Get("/", a.handleListApplications)
			r.Get("/{id}", a.handleGetApplication)
			r.Patch("/{id}", a.handleUpdateApplication)
			r.Delete("/{id}", a.handleDeleteApplication)
			r.Get("/{id}/copy", a.handleCopyApplication)
		})

		r.Route("/infrastructure", func(r chi.Router) {
			r.Post("/", a.handleCreateInfrastructure)
			r.Get("/", a.handleListInfrastructure)
			r.Get("/{id}", a.handleGetInfrastructure)
			r.Patch("/{id}", a.handleUpdateInfrastructure)
			r.Delete("/{id}", a.handleDeleteInfrastructure)
			r.Get("/{id}/copy", a.handleCopyInfrastructure)
		})

		r.Route("/services", func(r chi.Router) {
			r.Post("/", a.handleCreateService)
			r.Get("/", a.handleListServices)
			r.Get("/{id}", a.handleGetService)
			r.Patch("/{id}", a.handleUpdateService)
			r.Delete("/{id}", a.handleDeleteService)
			r.Get("/{id}/copy", a.handleCopyService)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/{category}", a.handleListOptions)
			r.Post("/{category}", a.handleAddOption)
			r.Delete("/{category}/{value}", a.handleRemoveOption)
		})

		r.Get("/audit", a.handleListAudit)
		r.Get("/dashboard", a.handleDashboard)
		r.Get("/export/{entity}", a.handleExport)
		r.Post("/import/{entity}", a.handleImport)
	})

	return r, nil
}

// countMutation records a successful mutation in the Prometheus counter.
func countMutation(entityType, action string) {
	mutationsTotal.WithLabelValues(entityType, action).Inc()
}
