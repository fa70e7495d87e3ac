// Package config provides configuration management for cxkit.
//
// Settings are layered: built-in defaults, then config.yaml from the
// configuration directory, then environment variables, then command-line
// flags (applied by the cmd package).
//
// # Configuration Directory
//
// Default location: ~/.config/cxkit
// Custom location: Specified via --config-path flag
//
// A missing config.yaml is not an error; the defaults are used.
//
// # Configuration Structure
//
//	projectId: "my-project"          # Google Cloud project (env PROJECT_ID)
//	quotaProjectId: "billing"        # Quota project, defaults to projectId (env QUOTA_PROJECT_ID)
//	location: "global"               # Dialogflow CX location (default: global)
//	credentialsFile: "key.json"      # Service account or workload identity file (env SVC_ACCOUNT_FILE)
//	logLevel: "info"                 # debug, info, warn or error (env CXKIT_LOG_LEVEL)
//	provision:
//	  agentDisplayName: "Webhook Sample"
//	  webhookUri: "https://us-central1-my-project.cloudfunctions.net/webhook"
//	  sample: "webhook"              # webhook or session-param
//	  wait: 10s                      # Pause before every test run
//	  maxRetries: 3                  # Runs allowed while the NLU model trains
//	restore:
//	  agentUri: "gs://agent-testing/travel"
//	  agentUriFile: "agent_uri.json" # JSON file with an agent_uri field
//	serve:
//	  addr: ":8080"                  # Listen address (env PORT sets :$PORT)
//	liveCheck:
//	  function: "webhook"            # Cloud Function name (env TEST_FUNCTION)
//	  location: "us-central1"
//
// # Usage Examples
//
//	cfg, err := config.Load(config.DefaultConfigPath())
//	if err != nil {
//	    return err
//	}
//	if err := cfg.ValidateProvision(); err != nil {
//	    return err
//	}
package config
