package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/biscuit28110/Signature-by-lt-v2/internal/auth"
	"github.com/biscuit28110/Signature-by-lt-v2/internal/config"
	"github.com/biscuit28110/Signature-by-lt-v2/internal/database"
	"github.com/biscuit28110/Signature-by-lt-v2/internal/planity"
	"github.com/biscuit28110/Signature-by-lt-v2/internal/reviews"
	"github.com/biscuit28110/Signature-by-lt-v2/internal/server"
)

var (
	// Version will be set during build
	Version = "dev"

	// Command line flags
	port     = flag.Int("port", 0, "Port to run the server on (default: 8080 or SALON_PORT)")
	dbPath   = flag.String("db", "", "Path to database file (default: data/salon.db or SALON_DB_PATH)")
	dataPath = flag.String("data", "", "Path to data directory (default: data or SALON_DATA_PATH)")
	version  = flag.Bool("version", false, "Print version information")
	prodMode = flag.Bool("prod", false, "Enable production mode (secure cookies, quieter logging)")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("Signature by LT version %s\n", Version)
		return
	}

	logger := log.New(os.Stdout, "salon: ", log.LstdFlags|log.Lshortfile)

	// Get base configuration from environment
	cfg := config.GetConfig()

	// Override with command line flags if provided
	if *port > 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *dataPath != "" {
		cfg.DataPath = *dataPath
	}
	cfg.ProductionMode = *prodMode

	logger.Printf("Starting Signature by LT v%s", Version)
	logger.Printf("Port: %d", cfg.Port)
	logger.Printf("Database: %s", cfg.DBPath)
	logger.Printf("Data directory: %s", cfg.DataPath)
	logger.Printf("Mode: %s", map[bool]string{true: "production", false: "development"}[cfg.ProductionMode])

	for _, dir := range []string{cfg.DataPath, filepath.Dir(cfg.DBPath)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	db, err := database.NewDB(cfg.DBPath, database.DefaultConfig())
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Credential store: created with bootstrap values on first run.
	store := auth.NewFileStore(filepath.Join(cfg.DataPath, "admin-auth.json"), auth.Bootstrap{
		Username:      cfg.AdminUsername,
		Password:      cfg.AdminPassword,
		Salt:          cfg.AdminPasswordSalt,
		PasswordHash:  cfg.AdminPasswordHash,
		SessionSecret: cfg.AdminSessionSecret,
	})
	if err := store.Ensure(); err != nil {
		logger.Fatalf("Failed to initialize credential store: %v", err)
	}

	limiter := auth.NewRateLimiter()
	accessLog := auth.NewAccessLog(filepath.Join(cfg.DataPath, "admin-access.json"))
	authService := auth.NewService(store, limiter, accessLog, logger)

	reviewsService := reviews.NewService(cfg.GooglePlacesAPIKey, cfg.GooglePlaceID, logger)
	reviewsService.Start()
	defer reviewsService.Stop()

	planityService := planity.NewService(cfg.PlanityEndpoint, cfg.PlanityAPIKey, logger)

	srv, err := server.NewServer(db, logger, authService, reviewsService, planityService, server.Config{
		UseHTTPS:       cfg.ProductionMode,
		WebPath:        cfg.WebPath,
		DataPath:       cfg.DataPath,
		ProductionMode: cfg.ProductionMode,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize server: %v", err)
	}

	logger.Printf("Starting server on port %d", cfg.Port)
	if err := srv.Start(cfg.GetAddress()); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}
