// Package logging provides the structured logging used across cxkit.
//
// It is a thin layer over Go's standard slog package that tags every record
// with a subsystem so output from provisioning, test runs and the HTTP
// server can be filtered independently.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Provision", "Created %s %q", kind, displayName)
//	logging.Debug("Config", "Loaded configuration from %s", path)
//	logging.Warn("Provision", "No %s named %q found after conflict", kind, name)
//	logging.Error("Serve", err, "Server stopped")
//
// # Levels
//
// The level comes from the --log-level flag when given, otherwise from the
// CXKIT_LOG_LEVEL environment variable, otherwise Info. ParseLevel accepts
// debug, info, warn (or warning) and error; anything else maps to Info.
//
// # Subsystems
//
//   - Provision: create-or-fetch of Dialogflow resources
//   - TestRun: test case execution and retries
//   - Sample: orchestration of a complete sample agent
//   - Dialogflow: API client construction and error mapping
//   - Auth: credential resolution
//   - Config: configuration loading and validation
//   - Serve, Webhook, Frontend: the HTTP process
//   - LiveCheck: calls against the deployed webhook function
package logging
