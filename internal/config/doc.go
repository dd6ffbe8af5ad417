// Package config handles configuration loading for desk-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${DESK_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	cache:
//	  settings_ttl: "1h"
//	  dedupe_ttl: "5m"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	  app_base_uri: "https://desk.example.com"
//
// Tenant restriction and bot surfaces:
//
//	tenant:
//	  id: "00000000-0000-0000-0000-000000000000"
//	apps:
//	  user_app_id: "user-app-guid"
//	  sme_app_id: "sme-app-guid"
//
// Database:
//
//	database:
//	  path: "/var/lib/desk/gateway.db"
//
// Knowledge-base backend:
//
//	answers:
//	  endpoint: "https://answers.example.com/qnamaker"
//	  key: "${DESK_ANSWERS_KEY}"
//
// Outbound conversation transport:
//
//	connector:
//	  service_url: "https://connector.example.com"
//	  token: "${DESK_CONNECTOR_TOKEN}"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("/etc/desk/gateway.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
