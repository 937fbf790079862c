// main.go
// Taller Central API
// Maintenance-report ticketing over Firestore: report lifecycle, technician
// assignment, comment threads, maintenance schedules and dashboard metrics.

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"taller/auth"
	"taller/config"
	"taller/db"
	"taller/handlers"
	"taller/middleware"
	"taller/models"
	"taller/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	cfg := config.Load()
	cfg.Validate()

	log.Printf("🚀 Starting Taller API Server")
	log.Printf("📍 Environment: %s", cfg.Server.Environment)
	log.Printf("🔧 Port: %s", cfg.Server.Port)

	// Initialize Firestore and the Auth admin client
	ctx, stopSubscriptions := context.WithCancel(context.Background())
	defer stopSubscriptions()

	firestoreDB, err := db.NewFirestoreDB(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsPath, cfg.Reports.FolioBase)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Firestore: %v", err)
	}
	defer firestoreDB.Close()

	// Initialize object storage for report and comment images
	images, err := storage.NewImageStore(ctx, cfg.Storage.Bucket, cfg.Firebase.CredentialsPath)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}
	defer images.Close()

	// Badge subscriptions live for the whole server session
	watcher := firestoreDB.NewWatcher(ctx)
	defer watcher.StopAll()

	// Initialize JWT Manager
	jwtManager := auth.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.Expiration,
		cfg.JWT.RefreshTokenExpiration,
	)
	log.Printf("🔐 JWT Manager initialized (expiration: %v)", cfg.JWT.Expiration)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(firestoreDB, jwtManager)
	reportsHandler := handlers.NewReportsHandler(firestoreDB, images, watcher)
	commentsHandler := handlers.NewCommentsHandler(firestoreDB, images)
	maintenanceHandler := handlers.NewMaintenanceHandler(firestoreDB)
	dashboardHandler := handlers.NewDashboardHandler(firestoreDB)
	adminHandler := handlers.NewAdminHandler(firestoreDB)
	log.Printf("✅ Handlers initialized")

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	rateLimiter.CleanupOldLimiters()
	log.Printf("🛡️  Rate limiter initialized (%d requests per %v)", cfg.RateLimit.Requests, cfg.RateLimit.Window)

	// Set up router
	mux := http.NewServeMux()

	// Public routes (no authentication required)
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/api/login", authHandler.Login)
	mux.HandleFunc("/api/refresh", authHandler.RefreshToken)

	// Protected routes (authentication required)
	authMiddleware := middleware.AuthMiddleware(jwtManager, firestoreDB)

	// Report lifecycle
	mux.Handle("/api/reports", authMiddleware(http.HandlerFunc(reportsHandler.List)))
	mux.Handle("/api/reports/get", authMiddleware(http.HandlerFunc(reportsHandler.Get)))
	mux.Handle("/api/reports/create", authMiddleware(http.HandlerFunc(reportsHandler.Create)))
	mux.Handle("/api/reports/status", authMiddleware(http.HandlerFunc(reportsHandler.SetStatus)))
	mux.Handle("/api/reports/open", authMiddleware(http.HandlerFunc(reportsHandler.Open)))
	mux.Handle("/api/badges", authMiddleware(http.HandlerFunc(reportsHandler.Badges)))

	// Comment threads
	mux.Handle("/api/comments", authMiddleware(http.HandlerFunc(commentsHandler.List)))
	mux.Handle("/api/comments/post", authMiddleware(http.HandlerFunc(commentsHandler.Post)))

	// Maintenance schedules (technicians)
	techOrAdmin := middleware.RequireRole(models.RoleTecnico, models.RoleAdministrador)
	mux.Handle("/api/maintenance", authMiddleware(techOrAdmin(http.HandlerFunc(maintenanceHandler.List))))
	mux.Handle("/api/maintenance/create", authMiddleware(techOrAdmin(http.HandlerFunc(maintenanceHandler.Create))))
	mux.Handle("/api/maintenance/delete", authMiddleware(techOrAdmin(http.HandlerFunc(maintenanceHandler.Delete))))

	// Dashboard
	mux.Handle("/api/dashboard", authMiddleware(http.HandlerFunc(dashboardHandler.Summary)))

	// Admin endpoints (admin only)
	adminOnly := middleware.RequireRole(models.RoleAdministrador)
	mux.Handle("/api/reports/assign", authMiddleware(adminOnly(http.HandlerFunc(reportsHandler.Assign))))
	mux.Handle("/api/reports/delete", authMiddleware(adminOnly(http.HandlerFunc(reportsHandler.Delete))))
	mux.Handle("/api/comments/delete", authMiddleware(adminOnly(http.HandlerFunc(commentsHandler.Delete))))
	mux.Handle("/api/admin/export", authMiddleware(adminOnly(http.HandlerFunc(dashboardHandler.ExportCSV))))
	mux.Handle("/api/admin/users", authMiddleware(adminOnly(http.HandlerFunc(adminHandler.GetUsers))))
	mux.Handle("/api/admin/users/create", authMiddleware(adminOnly(http.HandlerFunc(adminHandler.CreateUser))))
	mux.Handle("/api/admin/users/delete", authMiddleware(adminOnly(http.HandlerFunc(adminHandler.DeleteUserByEmail))))
	mux.Handle("/api/admin/technicians", authMiddleware(adminOnly(http.HandlerFunc(adminHandler.GetTechnicians))))
	mux.Handle("/api/areas", authMiddleware(http.HandlerFunc(adminHandler.GetAreas)))
	mux.Handle("/api/areas/create", authMiddleware(adminOnly(http.HandlerFunc(adminHandler.CreateArea))))
	mux.Handle("/api/areas/delete", authMiddleware(adminOnly(http.HandlerFunc(adminHandler.DeleteArea))))

	// Apply global middleware
	handler := middleware.CORSMiddleware(cfg.CORS.AllowedOrigins)(mux)
	handler = rateLimiter.Middleware()(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("✅ Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	stopSubscriptions()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

// Health check endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":%d,"version":"1.0.0"}`, time.Now().Unix())
}
