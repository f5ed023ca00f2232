package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/pcoutinho/legal-management/internal/audit"
	"github.com/pcoutinho/legal-management/internal/auth"
	"github.com/pcoutinho/legal-management/internal/authz"
	"github.com/pcoutinho/legal-management/internal/company"
	"github.com/pcoutinho/legal-management/internal/group"
	"github.com/pcoutinho/legal-management/internal/legalcalc"
	"github.com/pcoutinho/legal-management/internal/legalcase"
	"github.com/pcoutinho/legal-management/internal/permission"
	"github.com/pcoutinho/legal-management/internal/role"
	"github.com/pcoutinho/legal-management/internal/transport/middleware"
	"github.com/pcoutinho/legal-management/internal/transport/swagger"
	"github.com/pcoutinho/legal-management/internal/user"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth        *auth.Handler
	User        *user.Handler
	Company     *company.Handler
	Role        *role.Handler
	Permission  *permission.Handler
	Group       *group.Handler
	LegalCase   *legalcase.Handler
	Calculation *legalcalc.Handler
	Audit       *audit.Handler
}

// RegisterAllRoutes wires the full API surface. Authorization is enforced
// twice: a route-level permission gate keeps obviously unauthorized traffic
// out, and the guarded services re-check with request context conditions.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, authorizer authz.Authorizer, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.TraceID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		// Self-registration is the only unauthenticated write.
		r.Post("/signup", h.User.Signup)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.User.Me)

			pr.Route("/users", func(ur chi.Router) {
				ur.With(middleware.RequirePermission(authorizer, user.ResourceType, "create")).
					Post("/", h.User.CreateUser)
				ur.With(middleware.RequirePermission(authorizer, user.ResourceType, "read")).
					Get("/", h.User.ListUsers)
				ur.With(middleware.RequirePermission(authorizer, user.ResourceType, "read")).
					Get("/{id}", h.User.GetUser)
				ur.With(middleware.RequirePermission(authorizer, user.ResourceType, "update")).
					Patch("/{id}", h.User.UpdateUser)
				ur.With(middleware.RequirePermission(authorizer, user.ResourceType, "delete")).
					Delete("/{id}", h.User.DeleteUser)
			})

			pr.Route("/companies", func(cr chi.Router) {
				cr.With(middleware.RequirePermission(authorizer, company.ResourceType, "create")).
					Post("/", h.Company.CreateCompany)
				cr.With(middleware.RequirePermission(authorizer, company.ResourceType, "read")).
					Get("/", h.Company.ListCompanies)
				cr.With(middleware.RequirePermission(authorizer, company.ResourceType, "read")).
					Get("/{id}", h.Company.GetCompany)
				cr.With(middleware.RequirePermission(authorizer, company.ResourceType, "update")).
					Patch("/{id}", h.Company.UpdateCompany)
				cr.With(middleware.RequirePermission(authorizer, company.ResourceType, "delete")).
					Delete("/{id}", h.Company.DeleteCompany)
				cr.With(middleware.RequirePermission(authorizer, company.ResourceType, "update")).
					Post("/{id}/members", h.Company.AddMember)
				cr.With(middleware.RequirePermission(authorizer, company.ResourceType, "update")).
					Delete("/{id}/members/{userID}", h.Company.RemoveMember)
			})

			pr.Route("/roles", func(rr chi.Router) {
				rr.With(middleware.RequirePermission(authorizer, role.ResourceType, "create")).
					Post("/", h.Role.CreateRole)
				rr.With(middleware.RequirePermission(authorizer, role.ResourceType, "read")).
					Get("/", h.Role.ListRoles)
				rr.With(middleware.RequirePermission(authorizer, role.ResourceType, "read")).
					Get("/{id}", h.Role.GetRole)
				rr.With(middleware.RequirePermission(authorizer, role.ResourceType, "update")).
					Patch("/{id}", h.Role.UpdateRole)
				rr.With(middleware.RequirePermission(authorizer, role.ResourceType, "delete")).
					Delete("/{id}", h.Role.DeleteRole)
				rr.With(middleware.RequirePermission(authorizer, role.ResourceType, "update")).
					Post("/{id}/permissions", h.Role.AddPermission)
				rr.With(middleware.RequirePermission(authorizer, role.ResourceType, "update")).
					Delete("/{id}/permissions/{permissionID}", h.Role.RemovePermission)
				rr.With(middleware.RequirePermission(authorizer, role.ResourceType, "update")).
					Post("/{id}/users", h.Role.AssignUser)
				rr.With(middleware.RequirePermission(authorizer, role.ResourceType, "update")).
					Delete("/{id}/users/{userID}", h.Role.UnassignUser)
			})

			pr.Route("/permissions", func(pmr chi.Router) {
				pmr.With(middleware.RequirePermission(authorizer, permission.ResourceType, "create")).
					Post("/", h.Permission.CreatePermission)
				pmr.With(middleware.RequirePermission(authorizer, permission.ResourceType, "read")).
					Get("/", h.Permission.ListPermissions)
				pmr.With(middleware.RequirePermission(authorizer, permission.ResourceType, "read")).
					Get("/{id}", h.Permission.GetPermission)
				pmr.With(middleware.RequirePermission(authorizer, permission.ResourceType, "update")).
					Patch("/{id}", h.Permission.UpdatePermission)
				pmr.With(middleware.RequirePermission(authorizer, permission.ResourceType, "delete")).
					Delete("/{id}", h.Permission.DeletePermission)
			})

			pr.Route("/groups", func(gr chi.Router) {
				gr.With(middleware.RequirePermission(authorizer, group.ResourceType, "create")).
					Post("/", h.Group.CreateGroup)
				gr.With(middleware.RequirePermission(authorizer, group.ResourceType, "read")).
					Get("/", h.Group.ListGroups)
				gr.With(middleware.RequirePermission(authorizer, group.ResourceType, "read")).
					Get("/{id}", h.Group.GetGroup)
				gr.With(middleware.RequirePermission(authorizer, group.ResourceType, "update")).
					Patch("/{id}", h.Group.UpdateGroup)
				gr.With(middleware.RequirePermission(authorizer, group.ResourceType, "delete")).
					Delete("/{id}", h.Group.DeleteGroup)
				gr.With(middleware.RequirePermission(authorizer, group.ResourceType, "update")).
					Post("/{id}/roles", h.Group.AddRole)
				gr.With(middleware.RequirePermission(authorizer, group.ResourceType, "update")).
					Delete("/{id}/roles/{roleID}", h.Group.RemoveRole)
				gr.With(middleware.RequirePermission(authorizer, group.ResourceType, "update")).
					Post("/{id}/users", h.Group.AddUser)
				gr.With(middleware.RequirePermission(authorizer, group.ResourceType, "update")).
					Delete("/{id}/users/{userID}", h.Group.RemoveUser)
			})

			pr.Route("/legal-cases", func(lr chi.Router) {
				lr.With(middleware.RequirePermission(authorizer, legalcase.ResourceType, "create")).
					Post("/", h.LegalCase.CreateLegalCase)
				lr.With(middleware.RequirePermission(authorizer, legalcase.ResourceType, "read")).
					Get("/", h.LegalCase.ListLegalCases)
				lr.With(middleware.RequirePermission(authorizer, legalcase.ResourceType, "read")).
					Get("/{id}", h.LegalCase.GetLegalCase)
				lr.With(middleware.RequirePermission(authorizer, legalcase.ResourceType, "update")).
					Patch("/{id}", h.LegalCase.UpdateLegalCase)
				lr.With(middleware.RequirePermission(authorizer, legalcase.ResourceType, "delete")).
					Delete("/{id}", h.LegalCase.DeleteLegalCase)
				lr.With(middleware.RequirePermission(authorizer, legalcalc.ResourceType, "read")).
					Get("/{caseID}/calculations", h.Calculation.ListCaseCalculations)
			})

			pr.Route("/legal-calculations", func(lcr chi.Router) {
				lcr.With(middleware.RequirePermission(authorizer, legalcalc.ResourceType, "create")).
					Post("/", h.Calculation.CreateCalculation)
				lcr.With(middleware.RequirePermission(authorizer, legalcalc.ResourceType, "read")).
					Get("/{id}", h.Calculation.GetCalculation)
				lcr.With(middleware.RequirePermission(authorizer, legalcalc.ResourceType, "update")).
					Patch("/{id}", h.Calculation.UpdateCalculation)
				lcr.With(middleware.RequirePermission(authorizer, legalcalc.ResourceType, "delete")).
					Delete("/{id}", h.Calculation.DeleteCalculation)
			})

			pr.With(middleware.RequirePermission(authorizer, "audit_logs", "read")).
				Get("/audit-logs", h.Audit.ListAuditLogs)
		})
	})
}
