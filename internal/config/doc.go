// Package config provides application configuration management.
// Configuration is loaded from environment variables prefixed COFFEE_
// with an optional YAML file merged underneath, and validated before
// use. The package also holds dataset constants shared across the
// application: the year range, the export placeholder sentinel, and
// the chart palette.
package config
