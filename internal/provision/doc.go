// Package provision implements idempotent create-or-fetch of Dialogflow CX
// resources.
//
// The remote API does not enforce unique display names, so this package treats
// the (parent, display name) pair as the identity of a resource. Ensure tries
// to create the resource first; when the API answers "already exists" it lists
// the parent, picks the entry with the same display name and fetches it.
//
// Each resource kind has a delegator (AgentDelegator, WebhookDelegator,
// IntentDelegator, PageDelegator, FlowDelegator, TestCaseDelegator) that
// receives its remote API through its constructor, builds a typed payload and
// keeps the resolved handle for later stages. Delegators must be initialized
// in dependency order: agent, webhook, intent, page, flow, test cases.
//
// # Deferred failure on a missed lookup
//
// If creation conflicts but listing does not return a match, Ensure reports
// NotFound without an error and the delegator keeps no handle. The failure
// only surfaces later, as a NotCreatedError, when a dependent stage asks for
// the handle.
//
// # Concurrency
//
// Ensure is not safe against concurrent provisioners working on the same
// parent. Two runs can both see a conflict and both miss the resource the
// other just created (list results are eventually consistent), or both
// create a resource when the API does not reject the duplicate. No locking is
// attempted; run one provisioner per agent at a time.
package provision
