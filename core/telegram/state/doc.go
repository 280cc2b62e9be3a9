// Package state provides the per-user dialog state machine used by multi-step
// conversations. Sessions live in a Store: memory for development and tests,
// Redis when the bot runs with more than one replica or must survive restarts.
package state
