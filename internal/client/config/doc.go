// Package config loads runtime configuration for the drawer client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. DRAWER_* environment variables, after an optional dotenv file
//     (-env path, default ./.env) has been loaded.
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "token": "",
//	  "database_path": "drawer.db",
//	  "online_check_interval": "3s",
//	  "resync_interval": "1m",
//	  "push_delay": "500ms",
//	  "request_timeout": "5s",
//	  "sync_policy": "merge",
//	  "log_file": "drawer.log",
//	  "log_level": "info",
//	  "client_id": ""
//	}
//
// The passphrase is deliberately absent from the JSON schema; pass it with
// -k or DRAWER_PASSPHRASE.
package config
