// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pixelfeed/internal/cache"
	"pixelfeed/internal/config"
	"pixelfeed/internal/database"
	"pixelfeed/internal/events"
	"pixelfeed/internal/middleware"
	"pixelfeed/internal/models"
	"pixelfeed/internal/notifications"
	"pixelfeed/internal/observability"
	"pixelfeed/internal/repository"
	"pixelfeed/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "pixelfeed-api"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	verifier       *middleware.IdentityVerifier
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	notifier  *notifications.Notifier
	hub       *notifications.Hub
	publisher events.Publisher

	userService    *service.UserService
	feedService    *service.FeedService
	postService    *service.PostService
	likeService    *service.LikeService
	commentService *service.CommentService
	followService  *service.FollowService
	profileService *service.ProfileService
}

// NewServer creates a new server instance, connecting to the database and Redis
// described by cfg. Extra event sinks (such as the NATS publisher) receive every
// domain event alongside the realtime notifier.
func NewServer(cfg *config.Config, sinks ...events.Publisher) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient, sinks...)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil redisClient disables caching, rate limiting and realtime notifications.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, sinks ...events.Publisher) (*Server, error) {
	verifier, err := middleware.NewIdentityVerifier(cfg)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	followRepo := repository.NewFollowRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: observability.HTTPMetrics(serviceName),
		verifier:       verifier,
	}

	publishers := events.Multi{}
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		publishers = append(publishers, s.notifier)
	}
	for _, sink := range sinks {
		if sink != nil {
			publishers = append(publishers, sink)
		}
	}
	s.publisher = publishers

	hydrator := service.NewStatHydrator(statsRepo, likeRepo)
	s.userService = service.NewUserService(userRepo)
	guard := service.NewOwnershipGuard(s.userService, postRepo, commentRepo)

	s.feedService = service.NewFeedService(s.userService, postRepo, followRepo, hydrator).
		WithLimits(cfg.FeedDefaultLimit, cfg.FeedMaxLimit)
	s.followService = service.NewFollowService(s.userService, userRepo, followRepo, s.publisher)
	s.postService = service.NewPostService(s.userService, postRepo, guard, hydrator, s.publisher)
	s.likeService = service.NewLikeService(s.userService, postRepo, likeRepo, s.publisher)
	s.commentService = service.NewCommentService(s.userService, postRepo, commentRepo, guard, s.publisher)
	s.profileService = service.NewProfileService(s.userService, statsRepo, postRepo, s.followService, hydrator)

	return s, nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "PixelFeed API",
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// errorHandler renders errors that escape handlers with the standard envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := models.CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = models.CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge, fiber.StatusUpgradeRequired:
			code = models.CodeValidation
		case fiber.StatusTooManyRequests:
			code = models.CodeRateLimited
		case fiber.StatusUnauthorized:
			code = models.CodeUnauthenticated
		case fiber.StatusForbidden:
			code = models.CodeForbidden
		}
		return models.RespondWithError(c, fe.Code, &models.AppError{Code: code, Message: fe.Message})
	}

	appErr := models.AsAppError(err)
	if appErr.Code == models.CodeInternal {
		middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "path", c.Path(), "error", err)
	}
	return models.RespondWithAppError(c, appErr)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Identity is optional globally; protected routes add AuthRequired.
	app.Use(middleware.IdentityMiddleware(s.verifier))

	// Context Middleware to propagate request id, subject and trace id
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global per-IP ceiling in production; route-level Redis limits do the fine-grained work.
	if s.config.IsProduction() {
		app.Use(limiter.New(limiter.Config{
			Max:        300,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions || strings.HasPrefix(c.Path(), "/health")
			},
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return models.RespondWithAppError(c, &models.AppError{
					Code:    models.CodeRateLimited,
					Message: "Too many requests, please try again later.",
				})
			},
		}))
	}
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	auth := middleware.AuthRequired

	posts := api.Group("/posts")
	posts.Get("/", s.GetFeed)
	posts.Post("/", auth, middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	// Specific /:id/:resource routes before generic /:id
	posts.Get("/:id/comments", s.GetComments)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", auth, s.UpdatePost)
	posts.Delete("/:id", auth, s.DeletePost)

	likes := api.Group("/likes", auth)
	likes.Post("/", middleware.RateLimit(s.redis, 60, time.Minute, "like"), s.LikePost)
	likes.Delete("/", s.UnlikePost)

	comments := api.Group("/comments", auth)
	comments.Post("/", middleware.RateLimit(s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	comments.Delete("/", s.DeleteComment)

	follows := api.Group("/follows", auth)
	follows.Post("/", middleware.RateLimit(s.redis, 30, time.Minute, "follow"), s.FollowUser)
	follows.Delete("/", s.UnfollowUser)

	users := api.Group("/users")
	users.Post("/sync", auth, s.SyncUser)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following", s.GetFollowing)
	users.Get("/:id", s.GetUserProfile)

	api.Get("/ws", auth, s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so only a
// failing Redis (not a missing one) marks the service unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start wires the notification hub and serves HTTP until the app is shut down.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if s.hub != nil && s.notifier != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil && !errors.Is(err, context.Canceled) {
				middleware.Logger.Error("notification hub wiring stopped", "error", err)
			}
		}()
	}

	middleware.Logger.Info("Server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down notification hub", "error", err)
		}
	}

	if err := database.Close(s.db); err != nil {
		middleware.Logger.Error("error closing sql DB", "error", err)
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", "error", err)
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
