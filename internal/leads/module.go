// Package leads provides the lead management bounded context module.
package leads

import (
	"kronus_crm_backend/internal/adapters/storage"
	"kronus_crm_backend/internal/auth"
	"kronus_crm_backend/internal/events"
	apphttp "kronus_crm_backend/internal/http"
	"kronus_crm_backend/internal/leads/handler"
	"kronus_crm_backend/internal/leads/repository"
	"kronus_crm_backend/internal/leads/service"
	"kronus_crm_backend/platform/logger"
	"kronus_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, users auth.UserProvider, bus events.Bus, store storage.ObjectStore, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, users, bus, log)
	h := handler.New(svc, store, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the leads service for use by other composition-root wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the lead store for the follow-up sweep worker, which
// runs in a separate binary without the HTTP layer.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leads := ctx.Protected.Group("/leads")

	leads.GET("", m.handler.List)
	leads.POST("", m.handler.Create)
	leads.GET("/stats", m.handler.Stats)
	leads.GET("/:id", m.handler.Get)
	leads.PATCH("/:id", m.handler.Update)

	leads.POST("/:id/assign", m.handler.Assign)
	leads.POST("/:id/unassign", m.handler.Unassign)
	leads.POST("/:id/close", m.handler.Close)
	leads.POST("/:id/reopen", m.handler.Reopen)

	leads.POST("/:id/notes", m.handler.AddNote)
	leads.GET("/:id/activities", m.handler.ListActivities)

	leads.POST("/:id/documents", m.handler.UploadDocument)
	leads.GET("/:id/documents/:documentId/download", m.handler.DownloadDocument)
	leads.DELETE("/:id/documents/:documentId", m.handler.DeleteDocument)

	// Hard delete stays admin-only.
	ctx.Admin.DELETE("/leads/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
