// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emberlyhq/emberly-backend/internal/auth"
	"github.com/emberlyhq/emberly-backend/internal/common/database"
	"github.com/emberlyhq/emberly-backend/internal/config"
	"github.com/emberlyhq/emberly-backend/internal/conversation"
	"github.com/emberlyhq/emberly-backend/internal/ghosting"
	"github.com/emberlyhq/emberly-backend/internal/jobs"
	"github.com/emberlyhq/emberly-backend/internal/notification"
	"github.com/emberlyhq/emberly-backend/internal/nudge"
	"github.com/emberlyhq/emberly-backend/internal/policy"
	"github.com/emberlyhq/emberly-backend/internal/profile"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Emberly Dating API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load configuration
	log.Println("\n📋 Step 2: Loading configuration...")
	cfg := config.Load()
	log.Println("✅ Configuration loaded")

	// 3. Validate configuration
	log.Println("\n✔️  Step 3: Validating configuration...")
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration is valid")

	// 4. Connect to PostgreSQL
	log.Println("\n🗄️  Step 4: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	// 5. Connect to Redis (optional, used for refresh token rotation)
	log.Println("\n📮 Step 5: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v), continuing without refresh token rotation", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✅ Connected to Redis successfully")
		}
	} else {
		log.Println("⚠️  Redis URL not configured, skipping Redis connection")
	}

	// 6. Run database migrations
	log.Println("\n🔨 Step 6: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations: ", err)
	}
	log.Println("✅ Database migrations completed")

	// 7. Auth
	log.Println("\n🔐 Step 7: Initializing auth...")
	authRepo := auth.NewPostgresRepository(db)
	authService := auth.NewService(authRepo, redisClient, auth.Config{
		JWTSecret:          cfg.JWTSecret,
		BCryptCost:         cfg.BCryptCost,
		AccessTokenExpiry:  cfg.AccessTokenExpiry,
		RefreshTokenExpiry: cfg.RefreshTokenExpiry,
	})
	authHandler := auth.NewHandler(authService)
	authMiddleware := auth.NewMiddleware(authService)
	log.Println("✅ Auth initialized")

	// 8. Conversation policy
	log.Println("\n⚖️  Step 8: Initializing conversation policy...")
	policyRepo := policy.NewPostgresRepository(db)
	policyService := policy.NewService(policyRepo, cfg.MaxActiveConversations, cfg.RecencyWindow)
	policyHandler := policy.NewHandler(policyService)
	log.Printf("✅ Conversation policy initialized (limit: %d)", cfg.MaxActiveConversations)

	// 9. Ghosting detection and trust signals
	log.Println("\n👻 Step 9: Initializing ghosting detection...")
	ghostingRepo := ghosting.NewPostgresRepository(db)
	ghostingService := ghosting.NewService(ghostingRepo, cfg.GhostingAfter, cfg.DetectorBatchSize, cfg.TrustBatchSize)
	ghostingHandler := ghosting.NewHandler(ghostingService)
	log.Println("✅ Ghosting detection initialized")

	// 10. Notifications
	log.Println("\n🔔 Step 10: Initializing notifications...")

	var emailSender notification.EmailSender
	if cfg.EnableEmailNotifications && cfg.EmailProvider == "sendgrid" {
		emailSender, err = notification.NewSendGridEmailSender(cfg.SendGridAPIKey, cfg.EmailFrom, "Emberly")
		if err != nil {
			log.Printf("⚠️  SendGrid unavailable (%v), using mock email sender", err)
			emailSender = notification.NewMockEmailSender()
		} else {
			log.Println("   ✅ SendGrid email enabled")
		}
	} else if cfg.EnableEmailNotifications {
		emailSender = notification.NewMockEmailSender()
		log.Println("   ✅ Mock email sender enabled")
	}

	var smsSender notification.SMSSender
	if cfg.EnableSMSNotifications && cfg.SMSProvider == "twilio" {
		smsSender, err = notification.NewTwilioSMSSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		if err != nil {
			log.Printf("⚠️  Twilio unavailable (%v), using mock SMS sender", err)
			smsSender = notification.NewMockSMSSender()
		} else {
			log.Println("   ✅ Twilio SMS enabled")
		}
	} else if cfg.EnableSMSNotifications {
		smsSender = notification.NewMockSMSSender()
		log.Println("   ✅ Mock SMS sender enabled")
	}

	notificationRepo := notification.NewPostgresRepository(db)
	notificationHub := notification.NewHub()
	go notificationHub.Run()
	log.Println("   ✅ Notification hub started")

	notificationService := notification.NewService(notificationRepo, notificationHub, emailSender, smsSender, cfg.NotificationRetention)
	notificationHandler := notification.NewHandler(notificationService, notificationHub)
	log.Println("✅ Notifications initialized")

	// 11. Conversations
	log.Println("\n💬 Step 11: Initializing conversations...")
	conversationRepo := conversation.NewPostgresRepository(db)
	conversationService := conversation.NewService(conversationRepo, policyService, ghostingService, notificationService)
	conversationHandler := conversation.NewHandler(conversationService)
	log.Println("✅ Conversations initialized")

	// 12. Profiles and discovery
	log.Println("\n👤 Step 12: Initializing profiles...")
	profileRepo := profile.NewPostgresRepository(db)
	profileService := profile.NewService(profileRepo, policyService, ghostingService)
	profileHandler := profile.NewHandler(profileService)
	log.Println("✅ Profiles initialized")

	// 13. Nudges and batch jobs
	log.Println("\n⏰ Step 13: Initializing nudges and jobs...")
	nudgeRepo := nudge.NewPostgresRepository(db)
	nudgeService := nudge.NewService(
		nudgeRepo,
		notificationService,
		cfg.NudgeAfter,
		cfg.GhostingAfter,
		cfg.NudgeCooldown,
		cfg.ReminderCooldown,
		cfg.DetectorBatchSize,
	)
	jobsHandler := jobs.NewHandler(nudgeService, ghostingService, notificationService)
	log.Println("✅ Nudges and jobs initialized")

	// 14. Routes
	log.Println("\n🛣️  Step 14: Setting up routes...")
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	auth.RegisterRoutes(router, authHandler)
	log.Println("   ✅ Auth routes registered")

	policy.RegisterRoutes(router, policyHandler, authMiddleware)
	log.Println("   ✅ Policy routes registered")

	conversation.RegisterRoutes(router, conversationHandler, authMiddleware)
	log.Println("   ✅ Conversation routes registered")

	ghosting.RegisterRoutes(router, ghostingHandler, authMiddleware)
	log.Println("   ✅ Trust signal routes registered")

	notification.RegisterRoutes(router, notificationHandler, authMiddleware)
	log.Println("   ✅ Notification routes registered")

	profile.RegisterRoutes(router, profileHandler, authMiddleware)
	log.Println("   ✅ Profile routes registered")

	router.PathPrefix("/jobs").Handler(http.StripPrefix("/jobs", jobsHandler.Router()))
	log.Println("   ✅ Job routes registered")

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 15. Schedulers
	schedulerCtx, cancelSchedulers := context.WithCancel(context.Background())
	defer cancelSchedulers()

	scheduler := jobs.NewScheduler(
		nudgeService,
		ghostingService,
		notificationService,
		cfg.NudgeJobInterval,
		cfg.ReminderJobInterval,
		cfg.GhostingJobInterval,
	)
	scheduler.Start(schedulerCtx)
	log.Println("   ✅ Batch job schedulers started")

	// 16. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("\n========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n⚠️  Shutdown signal received...")

	cancelSchedulers()
	notificationHub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited gracefully")
}

var startTime = time.Now()

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
