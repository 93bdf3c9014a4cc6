package server

import (
	"log"

	"knowledgebase-be/internal/bootstrap"
	"knowledgebase-be/internal/config"
	"knowledgebase-be/internal/entity"
	"knowledgebase-be/internal/pkg/serverutils"
	ws "knowledgebase-be/internal/websocket"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.AuthController.RegisterRoutes(api)
	c.SettingController.RegisterRoutes(api)

	c.NoteController.RegisterRoutes(api)
	c.TranscriptController.RegisterRoutes(api)

	c.SearchController.RegisterRoutes(api)
	c.ReindexController.RegisterRoutes(api)

	registerWebsocket(api, c)
}

// The websocket feed streams reindex progress; the JWT middleware resolves
// the owner before the connection upgrades.
func registerWebsocket(api fiber.Router, c *bootstrap.Container) {
	wsGroup := api.Group("/ws/v1")
	wsGroup.Use(serverutils.JwtMiddleware)
	wsGroup.Use(func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	wsGroup.Get("", websocket.New(func(conn *websocket.Conn) {
		userId, ok := conn.Locals("user_id").(entity.UserID)
		if !ok {
			conn.Close()
			return
		}
		ws.ServeWs(c.WebSocketHub, conn, userId)
	}))
}
