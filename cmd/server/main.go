package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/primerapp/primer/internal/config"
	"github.com/primerapp/primer/internal/database"
	"github.com/primerapp/primer/internal/handlers"
	"github.com/primerapp/primer/internal/jobs"
	"github.com/primerapp/primer/internal/repository"
	cron "github.com/primerapp/primer/internal/scheduler"
	"github.com/primerapp/primer/internal/services"
	"github.com/primerapp/primer/pkg/logger"
	"github.com/primerapp/primer/pkg/middleware"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		log.Fatalf("Index creation error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	checklistRepo := repository.NewChecklistRepository(db)
	bookmarkRepo := repository.NewBookmarkRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	templateService := services.NewTemplateService(templateRepo)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, checklistRepo)
	checklistService := services.NewChecklistService(templateRepo, checklistRepo, notificationService)
	bookmarkService := services.NewBookmarkService(bookmarkRepo, templateRepo, checklistService)
	activityService := services.NewActivityService(activityRepo)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	templateHandler := handlers.NewTemplateHandler(templateService, activityService)
	checklistHandler := handlers.NewChecklistHandler(checklistService, activityService)
	bookmarkHandler := handlers.NewBookmarkHandler(bookmarkService, activityService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	activityHandler := handlers.NewActivityHandler(activityService)
	healthHandler := handlers.NewHealthHandler(db)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public routes
	router.HandleFunc("/health", healthHandler.HealthCheckHandler).Methods("GET")
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Catalog browsing is public. Literal paths come before the {id} route.
	router.HandleFunc("/templates", templateHandler.ListTemplatesHandler).Methods("GET")
	router.HandleFunc("/templates/search", templateHandler.SearchTemplatesHandler).Methods("GET")

	lastActive := middleware.UpdateLastActiveMiddleware(userService)

	// Protected template routes
	protectedTemplateRoutes := router.PathPrefix("/templates").Subrouter()
	protectedTemplateRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedTemplateRoutes.Use(lastActive)
	protectedTemplateRoutes.HandleFunc("", templateHandler.CreateTemplateHandler).Methods("POST")
	protectedTemplateRoutes.HandleFunc("/mine", templateHandler.GetMyTemplatesHandler).Methods("GET")

	// Public template detail, after /templates/mine so it never shadows it
	router.HandleFunc("/templates/{id}", templateHandler.GetTemplateByIDHandler).Methods("GET")

	// Checklist routes
	protectedChecklistRoutes := router.PathPrefix("/checklists").Subrouter()
	protectedChecklistRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedChecklistRoutes.Use(lastActive)
	protectedChecklistRoutes.HandleFunc("", checklistHandler.ForkChecklistHandler).Methods("POST")
	protectedChecklistRoutes.HandleFunc("", checklistHandler.GetChecklistsHandler).Methods("GET")
	protectedChecklistRoutes.HandleFunc("/{id}", checklistHandler.GetChecklistHandler).Methods("GET")
	protectedChecklistRoutes.HandleFunc("/{id}", checklistHandler.DeleteChecklistHandler).Methods("DELETE")
	protectedChecklistRoutes.HandleFunc("/{id}/progress", checklistHandler.GetChecklistProgressHandler).Methods("GET")
	protectedChecklistRoutes.HandleFunc("/{id}/steps", checklistHandler.UpdateStepHandler).Methods("PATCH")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.Use(lastActive)
	protectedUserRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.UpdateUserHandler).Methods("PATCH")

	// Bookmark routes
	protectedBookmarkRoutes := router.PathPrefix("/bookmarks").Subrouter()
	protectedBookmarkRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedBookmarkRoutes.Use(lastActive)
	protectedBookmarkRoutes.HandleFunc("", bookmarkHandler.CreateBookmarkHandler).Methods("POST")
	protectedBookmarkRoutes.HandleFunc("", bookmarkHandler.GetBookmarksHandler).Methods("GET")
	protectedBookmarkRoutes.HandleFunc("/{id}", bookmarkHandler.DeleteBookmarkHandler).Methods("DELETE")
	protectedBookmarkRoutes.HandleFunc("/{id}/promote", bookmarkHandler.PromoteBookmarkHandler).Methods("POST")

	// Notification routes
	protectedNotificationRoutes := router.PathPrefix("/notifications").Subrouter()
	protectedNotificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedNotificationRoutes.Use(lastActive)
	protectedNotificationRoutes.HandleFunc("", notificationHandler.GetUserNotificationsHandler).Methods("GET")
	protectedNotificationRoutes.HandleFunc("/{id}/read", notificationHandler.MarkAsReadHandler).Methods("POST")
	protectedNotificationRoutes.HandleFunc("/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	// Activity feed
	protectedActivityRoutes := router.PathPrefix("/activities").Subrouter()
	protectedActivityRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedActivityRoutes.Use(lastActive)
	protectedActivityRoutes.HandleFunc("", activityHandler.GetRecentActivitiesHandler).Methods("GET")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/checklists", checklistHandler.GetAllChecklistsHandler).Methods("GET")
	adminRoutes.HandleFunc("/templates", templateHandler.AdminGetAllTemplatesHandler).Methods("GET")
	adminRoutes.HandleFunc("/users", userHandler.AdminGetAllUsersHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Schedule the daily nudge scan
	nudgeScanner := jobs.NewNudgeScanner(notificationService)
	cron.StartNotificationCronJobs(nudgeScanner)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // adjust to frontend origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
