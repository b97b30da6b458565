// Package state keeps per-user conversation state in memory: the current
// FSM step, loose key/value data, the tracked in-flight message per chat
// and deferred per-user actions.
package state
