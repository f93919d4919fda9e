package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ganjaGuideAPI/handlers"
	"ganjaGuideAPI/internal/store"
	"ganjaGuideAPI/internal/store/memory"
	"ganjaGuideAPI/internal/store/postgres"
	"ganjaGuideAPI/middleware"
	"ganjaGuideAPI/services"

	_ "net/http/pprof"
)

var (
	dataStore      store.Store
	dbPool         *pgxpool.Pool
	userService    *services.UserService
	vendorService  *services.VendorService
	routeService   *services.RouteService
	checkinService *services.CheckinService
	journeyService *services.JourneyService
	pointsService  *services.PointsService
	seedService    *services.SeedService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch backend := os.Getenv("DATA_BACKEND"); backend {
	case "", "postgres":
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			log.Fatal("DATABASE_URL environment variable is not set")
		}

		poolConfig, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			log.Fatal("Failed to parse database URL:", err)
		}

		poolConfig.MaxConns = 25
		poolConfig.MinConns = 5
		poolConfig.MaxConnLifetime = time.Hour
		poolConfig.MaxConnIdleTime = 30 * time.Minute
		poolConfig.HealthCheckPeriod = time.Minute

		dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			log.Fatal("Failed to create connection pool:", err)
		}

		if err := dbPool.Ping(ctx); err != nil {
			log.Fatal("Failed to ping database:", err)
		}

		dataStore = postgres.New(dbPool)
		log.Println("Using postgres backend")

	case "memory":
		dataStore = memory.NewWithFixtures()
		log.Println("Using in-memory fixture backend")

	default:
		log.Fatalf("Unknown DATA_BACKEND %q (want postgres or memory)", backend)
	}

	userService = services.NewUserService(dataStore)
	vendorService = services.NewVendorService(dataStore)
	routeService = services.NewRouteService(dataStore)
	checkinService = services.NewCheckinService(dataStore)
	journeyService = services.NewJourneyService(dataStore, routeService, checkinService)
	pointsService = services.NewPointsService(dataStore)
	seedService = services.NewSeedService(dataStore)

	if os.Getenv("SEED_ON_START") == "true" {
		seeded, err := seedService.SeedCatalog(ctx)
		if err != nil {
			log.Fatal("Catalog seed failed:", err)
		}
		if !seeded {
			log.Println("Catalog already seeded, skipping")
		}
	}

	middleware.InitPrometheus()
	services.InitMetrics()
}

func main() {
	defer func() {
		log.Println("Closing data store...")
		dataStore.Close()
	}()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, pointsService)
	vendorHandler := handlers.NewVendorHandler(vendorService)
	journeyHandler := handlers.NewJourneyHandler(journeyService, routeService, userService)
	checkinHandler := handlers.NewCheckinHandler(checkinService, userService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if dbPool != nil {
			if err := dbPool.Ping(ctx); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "ganjaGuide-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/vendors", vendorHandler.GetVendors).Methods("GET")
	api.HandleFunc("/vendors/{id}", vendorHandler.GetVendor).Methods("GET")
	api.HandleFunc("/deals/featured", vendorHandler.GetFeaturedDeals).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/delete-account", userHandler.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/user/favorites", userHandler.GetFavorites).Methods("GET")
	protected.HandleFunc("/user/favorites", userHandler.AddFavorite).Methods("POST")
	protected.HandleFunc("/user/favorites", userHandler.RemoveFavorite).Methods("DELETE")
	protected.HandleFunc("/user/preferences", userHandler.GetPreferences).Methods("GET")
	protected.HandleFunc("/user/preferences", userHandler.UpdatePreferences).Methods("PUT")
	protected.HandleFunc("/user/visits", userHandler.GetVisits).Methods("GET")
	protected.HandleFunc("/user/points", userHandler.GetPoints).Methods("GET")
	protected.HandleFunc("/user/points/history", userHandler.GetPointsHistory).Methods("GET")
	protected.HandleFunc("/user/points/reconcile", userHandler.ReconcilePoints).Methods("POST")

	protected.HandleFunc("/route/preview", journeyHandler.PreviewRoute).Methods("POST")
	protected.HandleFunc("/journey/start", journeyHandler.StartJourney).Methods("POST")
	protected.HandleFunc("/journey/active", journeyHandler.GetActiveJourney).Methods("GET")
	protected.HandleFunc("/journey/advance", journeyHandler.AdvanceJourney).Methods("POST")
	protected.HandleFunc("/journey/skip", journeyHandler.SkipStop).Methods("POST")
	protected.HandleFunc("/journey/checkin", journeyHandler.CheckInStop).Methods("POST")
	protected.HandleFunc("/journey/complete", journeyHandler.CompleteJourney).Methods("POST")
	protected.HandleFunc("/journey/cancel", journeyHandler.CancelJourney).Methods("POST")
	protected.HandleFunc("/journey/stats", journeyHandler.GetJourneyStats).Methods("GET")

	protected.HandleFunc("/checkin", checkinHandler.CheckIn).Methods("POST")
	protected.HandleFunc("/checkin/history", checkinHandler.GetCheckInHistory).Methods("GET")

	protected.HandleFunc("/vendors/{id}/checkin-code", vendorHandler.GetCheckInCode).Methods("GET")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
