// Package config handles loading and validation of the application configuration
// from environment variables, an optional .env file and an optional YAML file.
// Environment variables always take precedence over the file.
package config
