// Package sample wires resource delegators into the end-to-end samples the
// tool provisions: the basic webhook sample with its test cases, the session
// parameter sample, and restoring an agent from an export.
//
// Every Setup runs its stages strictly in order. A stage whose dependency was
// never resolved fails with provision.NotCreatedError.
package sample
