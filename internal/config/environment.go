// internal/config/environment.go
package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port           int
	DBPath         string
	DataPath       string
	WebPath        string
	ProductionMode bool

	// Admin bootstrap values, used only when no auth record exists yet.
	AdminUsername      string
	AdminPassword      string
	AdminPasswordSalt  string
	AdminPasswordHash  string
	AdminSessionSecret string

	// Google Places reviews proxy.
	GooglePlacesAPIKey string
	GooglePlaceID      string

	// Planity pricing feed.
	PlanityEndpoint string
	PlanityAPIKey   string
}

func GetConfig() Config {
	config := Config{
		Port:     8080, // default port
		DBPath:   "data/salon.db",
		DataPath: "data",
		WebPath:  "web",

		AdminUsername:      "admin",
		AdminPassword:      "change-me-admin",
		AdminPasswordSalt:  "signature-salt-2024",
		AdminSessionSecret: "change-me-admin-session-secret",
	}

	// Override with environment variables if present
	if port := os.Getenv("SALON_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Port = p
		}
	}
	if dbPath := os.Getenv("SALON_DB_PATH"); dbPath != "" {
		config.DBPath = dbPath
	}
	if dataPath := os.Getenv("SALON_DATA_PATH"); dataPath != "" {
		config.DataPath = dataPath
	}
	if webPath := os.Getenv("SALON_WEB_PATH"); webPath != "" {
		config.WebPath = webPath
	}

	if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		config.AdminUsername = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		config.AdminPassword = v
	}
	if v := os.Getenv("ADMIN_PASSWORD_SALT"); v != "" {
		config.AdminPasswordSalt = v
	}
	if v := os.Getenv("ADMIN_PASSWORD_HASH"); v != "" {
		config.AdminPasswordHash = v
	}
	if v := os.Getenv("ADMIN_SESSION_SECRET"); v != "" {
		config.AdminSessionSecret = v
	}

	config.GooglePlacesAPIKey = os.Getenv("GOOGLE_PLACES_API_KEY")
	config.GooglePlaceID = os.Getenv("GOOGLE_PLACE_ID")
	config.PlanityEndpoint = os.Getenv("PLANITY_SERVICES_ENDPOINT")
	config.PlanityAPIKey = os.Getenv("PLANITY_API_KEY")

	return config
}

func (c Config) GetAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}
