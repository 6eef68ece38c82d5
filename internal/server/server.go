// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"snippetly/internal/cache"
	"snippetly/internal/config"
	"snippetly/internal/database"
	"snippetly/internal/middleware"
	"snippetly/internal/models"
	"snippetly/internal/repository"
	"snippetly/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo       repository.UserRepository
	friendRepo     repository.FriendRepository
	snippetRepo    repository.SnippetRepository
	collectionRepo repository.CollectionRepository
	tagRepo        repository.TagRepository

	authService       service.AuthService
	userService       service.UserService
	friendService     service.FriendService
	snippetService    service.SnippetService
	collectionService service.CollectionService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis first.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("snippetly-api"),
		userRepo:       repository.NewUserRepository(db),
		friendRepo:     repository.NewFriendRepository(db),
		snippetRepo:    repository.NewSnippetRepository(db),
		collectionRepo: repository.NewCollectionRepository(db),
		tagRepo:        repository.NewTagRepository(db),
	}

	server.authService = service.NewAuthService(server.userRepo, cfg.JWTSecret)
	server.userService = service.NewUserService(server.userRepo)
	server.friendService = service.NewFriendService(server.friendRepo, server.snippetRepo, server.userService)
	server.snippetService = service.NewSnippetService(server.snippetRepo, server.collectionRepo, server.tagRepo, server.userService)
	server.collectionService = service.NewCollectionService(server.collectionRepo, server.userService)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Snippetly Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.Refresh)
	auth.Post("/logout", s.Logout)

	// Public browse routes
	api.Get("/snippets", s.GetPublicSnippets)
	api.Get("/tags", s.GetTags)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// User routes. Specific /current routes go before the generic /:username.
	users := protected.Group("/users")
	users.Get("/", s.GetAllUsers)
	users.Get("/current", s.GetMyProfile)
	users.Put("/current", s.UpdateMyProfile)

	// Friendship read model
	users.Get("/current/friends", s.GetFriends)
	users.Get("/current/inbox", s.GetInbox)
	users.Get("/current/outbox", s.GetOutbox)

	// Friendship state machine
	users.Put("/add-friend/:friend_name", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "friend_request"), s.AddFriend)
	users.Put("/accept-friend/:friend_name", s.AcceptFriend)
	users.Put("/reject-friend/:friend_name", s.RejectFriend)
	users.Put("/cancel-friend/:friend_name", s.CancelFriend)

	// Per-user content. Specific /:username/:resource before generic /:username.
	users.Get("/:username/snippets/:slug", s.GetUserSnippet)
	users.Get("/:username/snippets", s.GetUserSnippets)
	users.Get("/:username/collections/:slug", s.GetUserCollection)
	users.Get("/:username/collections", s.GetUserCollections)
	users.Get("/:username", s.GetUserProfile)

	// Snippet mutations
	snippets := protected.Group("/snippets")
	snippets.Post("/", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_snippet"), s.CreateSnippet)
	snippets.Put("/:id", s.UpdateSnippet)
	snippets.Delete("/:id", s.DeleteSnippet)

	// Collection mutations
	collections := protected.Group("/collections")
	collections.Post("/", s.CreateCollection)
	collections.Put("/:id", s.UpdateCollection)
	collections.Delete("/:id", s.DeleteCollection)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis backs refresh-token rotation, so readiness requires it
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Snippetly API",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. It validates the
// Bearer access token and stores the caller's user ID in locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization header required"))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid authorization header format"))
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}
		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token subject"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		c.Locals("userID", uint(userID))
		c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID)))

		return c.Next()
	}
}
