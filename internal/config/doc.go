// Package config handles configuration loading, parsing, and validation
// from various sources (a .env file, an optional YAML file, environment
// variables). It provides a single typed Config built once at process start
// and passed explicitly to every component that needs settings.
package config
