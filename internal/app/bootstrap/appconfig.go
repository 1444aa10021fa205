// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, and request limits. AppConfig is everything
// specific to this application: database connection, token signing,
// lending policy, and audit logging. Values come from environment
// variables (BOOKSHELF_*), config files, or command-line flags, loaded in
// LoadConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Bearer token configuration
	JWTSecret string        // Secret for signing API tokens (must be strong in production)
	TokenTTL  time.Duration // How long an issued token stays valid

	// Lending policy
	LoanPeriodDays int     // Days a book may be kept once issued
	FinePerDay     float64 // Charged per started day past the due date

	// Admin bootstrap: created (or promoted) on startup when set
	AdminEmail    string
	AdminPassword string

	// Audit logging: "all" (db+log), "db", "log", or "off"
	AuditLogAuth  string
	AuditLogAdmin string
}
