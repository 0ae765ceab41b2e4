// Package config loads and validates Atlas Core configuration.
//
// Configuration is read from a YAML file, merged over hardcoded defaults,
// and finally overridden by ATLASCORE_* environment variables. The loaded
// Config is immutable process-wide state: it is constructed once at startup
// and passed to collaborators by parameter, never read from ambient globals.
package config
