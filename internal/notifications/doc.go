// Package notifications pushes variant pipeline events to ntfy.
//
// The service publishes to the topic URL configured under [notifications] and
// degrades to a no-op when no topic is set. Three event families exist: a pair
// that needs manual review, a finished batch, and an unexpected error. Each
// family can be switched off independently in config.
package notifications
