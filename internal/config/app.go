package config

// AppConfig carries the pairing service's non-database configuration,
// loaded once at process start the same way LoadDatabaseConfig is.
type AppConfig struct {
	Port                 string
	TournamentServiceURL string
	SendGridAPIKey       string
	SendGridFromEmail    string
	SendGridFromName     string
}

// LoadAppConfig reads the pairing service's environment configuration.
func LoadAppConfig() AppConfig {
	return AppConfig{
		Port:                 getEnv("SERVICE_PORT", "8090"),
		TournamentServiceURL: getEnv("TOURNAMENT_SERVICE_URL", "http://localhost:8081"),
		SendGridAPIKey:       getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:    getEnv("SENDGRID_FROM_EMAIL", "pairings@swisspair.local"),
		SendGridFromName:     getEnv("SENDGRID_FROM_NAME", "Swiss Pairing"),
	}
}
