// Package config loads runtime configuration for the Evently client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables (see parseEnv), optionally seeded from a dotenv
//     file selected via -e or -env. A ./.env file is picked up when present.
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Environment variables
//
//	EVENTLY_API_URL                 API base URL
//	EVENTLY_SERVER_STATUS_URL       reachability probe URL
//	EVENTLY_CONNECTIVITY_URL        internet connectivity probe URL
//	EVENTLY_STATUS_TIMEOUT          e.g. "2s"
//	EVENTLY_CONNECTIVITY_TIMEOUT    e.g. "3s"
//	EVENTLY_ONLINE_CHECK_INTERVAL   e.g. "3s"
//	EVENTLY_STATE_DIR               directory for session state
//	EVENTLY_LOG_LEVEL               debug|info|warn|error
//
// Supported flags
//
//	-a string   API base URL
//	-s string   server status URL
//	-n string   connectivity probe URL
//	-i int      online status check interval (seconds)
//	-d string   state directory
//	-l string   log level
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080/api/v1",
//	  "server_status_url": "http://127.0.0.1:8080/health",
//	  "status_probe_timeout": "2s",
//	  "online_check_interval": "3s",
//	  "state_dir": "/home/me/.config/evently"
//	}
//
// Fields absent from the JSON file keep their previous value.
package config
