// Package config defines the application's immutable configuration and the
// viper-based loader that builds it from environment variables and an
// optional config file.
package config
