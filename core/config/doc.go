// Package config provides configuration management for deck-sync.
//
// It utilizes Viper for loading configuration from an optional config.yaml,
// a .env file and environment variables. Defaults come from the `default`
// struct tags of each section.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: record database driver and connection details
//   - Storage: S3/MinIO credentials and bucket settings
//   - Log: Logging level and format
//   - Sync: sources, namespace, schedule and worker count
//
// Sources are a list and can only be set in config.yaml:
//
//	sync:
//	  namespace: my-workspace
//	  sources:
//	    - source_id: 0123456789abcdef0123456789abcdef
//	      target_collection: Biology
//	      recursive: true
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
