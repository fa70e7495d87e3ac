// Package cli provides the terminal-facing helpers shared by cxkit commands.
//
// # Output
//
// Printer renders test results, provisioned resources and conversation turns
// in one of four formats:
//   - table: kubectl-style plain columns, easy to pipe into grep or awk
//   - wide: the table plus full resource names and error details
//   - json and yaml: structured output for scripts
//
// # Progress
//
// Progress wraps a long-running call, such as training a flow or polling a
// test case, in a spinner. Quiet mode and non-terminal writers skip the
// animation.
//
// # Errors
//
// ClassifyAPIError turns gRPC and credential failures from Google Cloud into
// an *APIError that carries a short hint on how to fix the problem. Commands
// print Describe(err) instead of the raw error chain.
//
// # Flags
//
// CommandFlags and RegisterCommonFlags give every command the same
// --config-path, --output, --no-headers and --quiet flags.
package cli
