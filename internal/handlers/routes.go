package handlers

import (
	"github.com/Mayur-HT/Snapshot/internal/metrics"
	"github.com/Mayur-HT/Snapshot/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// Routes bundles everything Mount needs to wire the HTTP API.
type Routes struct {
	Auth           *AuthHandler
	Users          *UsersHandler
	Groups         *GroupsHandler
	Invites        *InvitesHandler
	Photos         *PhotosHandler
	Activity       *ActivityHandler
	AuthMiddleware *middleware.AuthMiddleware
	Metrics        *metrics.Metrics
}

func Mount(app *fiber.App, r Routes) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})
	if r.Metrics != nil {
		app.Get("/metrics", r.Metrics.Handler())
	}

	api := app.Group("/api")
	requireAuth := r.AuthMiddleware.RequireAuth

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", r.Auth.Register)
	authRoutes.Post("/login", r.Auth.Login)

	userRoutes := api.Group("/users", requireAuth)
	userRoutes.Get("/me", r.Users.Me)
	userRoutes.Get("/me/activity", r.Activity.Export)
	userRoutes.Get("/:id/selfie", r.Users.Selfie)

	groupRoutes := api.Group("/groups", requireAuth)
	groupRoutes.Get("/accept/:token", r.Invites.Accept)
	groupRoutes.Post("/", r.Groups.Create)
	groupRoutes.Get("/", r.Groups.List)
	groupRoutes.Get("/:id", r.Groups.Get)
	groupRoutes.Delete("/:id", r.Groups.Delete)
	groupRoutes.Post("/:id/members", r.Groups.AddMember)
	groupRoutes.Delete("/:id/members/:userId", r.Groups.RemoveMember)
	groupRoutes.Post("/:id/invite", r.Invites.Issue)

	photoRoutes := api.Group("/photos", requireAuth)
	photoRoutes.Post("/upload", r.Photos.Upload)
	photoRoutes.Get("/mine", r.Photos.Mine)
	photoRoutes.Get("/shared", r.Photos.Shared)
	photoRoutes.Get("/:id/content", r.Photos.Content)
}
