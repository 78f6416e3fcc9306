// Package config provides configuration management for the livelist service.
//
// It loads an optional .env file with godotenv and reads environment
// variables through Viper. Defaults come from the 'default' struct tags of the
// section types, so every key is known to Viper before AutomaticEnv runs.
//
// # Configuration Structure
//
//   - Server: HTTP port, API key and shutdown timeout
//   - Storage: S3/MinIO credentials and bucket for prefix children
//   - Database: MySQL or SQLite connection for persisted lists
//   - Log: logging level and format
//   - Catalog: validation, cache release interval and startup children
//
// Nested keys map to upper case variables joined by underscores, so
// catalog.release_interval_seconds is read from CATALOG_RELEASE_INTERVAL_SECONDS.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
