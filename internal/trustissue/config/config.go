package config

import (
	"flag"
	"os"
)

// Config contains application configuration
type Config struct {
	RunAddress                string
	DatabaseURI               string
	JWTSecret                 string
	UploadDir                 string
	RefundRejectedWithdrawals bool
	AdminEmail                string
	AdminPassword             string
}

// NewConfig creates a new configuration from environment variables or flags
func NewConfig() *Config {
	var cfg Config

	// Parse flags
	flag.StringVar(&cfg.RunAddress, "a", "", "Server run address")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "Database URI")
	flag.StringVar(&cfg.JWTSecret, "s", "", "JWT signing secret")
	flag.StringVar(&cfg.UploadDir, "u", "", "Directory for uploaded files")
	flag.BoolVar(&cfg.RefundRejectedWithdrawals, "refund-rejected", false,
		"Credit the reserved amount back when a withdrawal is rejected")
	flag.Parse()

	// Override with env vars if present
	if envAddr := os.Getenv("RUN_ADDRESS"); envAddr != "" {
		cfg.RunAddress = envAddr
	}

	if envDBURI := os.Getenv("DATABASE_URI"); envDBURI != "" {
		cfg.DatabaseURI = envDBURI
	}

	if envSecret := os.Getenv("JWT_SECRET"); envSecret != "" {
		cfg.JWTSecret = envSecret
	}

	if envUploads := os.Getenv("UPLOAD_DIR"); envUploads != "" {
		cfg.UploadDir = envUploads
	}

	if envRefund := os.Getenv("REFUND_REJECTED_WITHDRAWALS"); envRefund == "true" || envRefund == "1" {
		cfg.RefundRejectedWithdrawals = true
	}

	// Admin accounts cannot self-register; one is seeded at startup when
	// these are set.
	cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")

	// Set defaults if needed
	if cfg.RunAddress == "" {
		cfg.RunAddress = ":8080"
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "trustissue_secret"
	}

	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}

	return &cfg
}
