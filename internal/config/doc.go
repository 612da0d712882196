// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Variables may come from the process or from a .env file loaded with LoadDotEnv.
// The stream endpoint is derived from api.base_url unless api.stream_url is set.
package config
