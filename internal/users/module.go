// Package users provides the user administration bounded context module.
package users

import (
	"kronus_crm_backend/internal/events"
	apphttp "kronus_crm_backend/internal/http"
	"kronus_crm_backend/internal/users/handler"
	"kronus_crm_backend/internal/users/repository"
	"kronus_crm_backend/internal/users/service"
	"kronus_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the users bounded context module implementing http.Module.
type Module struct {
	handler  *handler.Handler
	provider *Provider
}

// NewModule creates and initializes the users module with all its dependencies.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus)
	h := handler.New(svc, val)

	return &Module{
		handler:  h,
		provider: NewProvider(repo),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "users"
}

// Provider returns the cross-context user lookup used by other modules.
func (m *Module) Provider() *Provider {
	return m.provider
}

// RegisterRoutes mounts user routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/users", m.handler.List)
	ctx.Protected.GET("/users/:id", m.handler.Get)

	// Account administration is admin-only.
	ctx.Admin.POST("/users", m.handler.Create)
	ctx.Admin.PATCH("/users/:id/active", m.handler.SetActive)
	ctx.Admin.PATCH("/users/:id/roles", m.handler.UpdateRoles)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
