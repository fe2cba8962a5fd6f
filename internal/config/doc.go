// Package config provides configuration management for plexlink.
//
// Configuration is loaded from a single directory. The default directory is
// ~/.config/plexlink, and commands accept --config-path to point elsewhere.
// The directory holds:
//   - config.yaml: optional settings overriding the built-in defaults
//   - settings.yaml: local settings written by plexlink itself (see internal/settings)
//
// # Precedence
//
// Values are resolved in this order, later entries winning:
//  1. Built-in defaults (GetDefaultConfig)
//  2. config.yaml in the configuration directory
//  3. Variables from a .env file in the working directory (LoadDotEnv)
//  4. PLEXLINK_* environment variables
//
// A .env file never overrides a variable that is already set in the process
// environment.
//
// # Environment Variables
//
//   - PLEXLINK_SERVER_URL: default media server URL when none is stored
//   - PLEXLINK_LOG_LEVEL: debug, info, warn or error
//   - PLEXLINK_LOG_FORMAT: text or json
//   - PLEXLINK_POLL_INTERVAL: PIN poll interval (Go duration, e.g. 1500ms)
//   - PLEXLINK_POLL_TIMEOUT: PIN poll timeout (Go duration, e.g. 2m)
//   - PLEXLINK_NO_KEYRING: when true, the OS keyring is never used
//
// # Example config.yaml
//
//	identityService:
//	  baseURL: https://plex.tv
//	polling:
//	  interval: 2s
//	  timeout: 3m
//	  transientRetries: 2
//	storage:
//	  keyringEnabled: false
//	log:
//	  level: debug
package config
