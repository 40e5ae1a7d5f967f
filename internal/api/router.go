package api

import (
	"glinax/docs"
	"glinax/internal/api/handlers"
	"glinax/pkg/auth"
	"glinax/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	chatHandler *handlers.ChatHandler,
	historyHandler *handlers.HistoryHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 25 * 1024 * 1024, // uploaded documents
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	_ = docs.SwaggerInfo // ensure docs package is imported and init() is called
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", chatHandler.Health)

	// Answer endpoints accept anonymous traffic; a bearer token just pins
	// the user id for history.
	optionalAuth := middleware.OptionalAuthMiddleware(jwtManager, appLogger)
	app.Post("/respond", optionalAuth, chatHandler.Respond)
	app.Post("/respond-with-files", optionalAuth, chatHandler.RespondWithFiles)

	// History endpoints
	app.Get("/history/:userID", historyHandler.UserHistory)
	app.Get("/history/chat/:conversationID", historyHandler.ConversationHistory)

	// Protected routes
	protected := app.Group("/api/chat", middleware.AuthMiddleware(jwtManager, appLogger))
	protected.Get("/conversations", historyHandler.ListConversations)

	return app
}
