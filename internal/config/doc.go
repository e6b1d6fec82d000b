// Package config loads application configuration from an optional YAML file,
// an optional .env file and TODO_-prefixed environment variables, in increasing
// order of precedence, and validates the result before it is used.
package config
