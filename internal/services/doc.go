// Package services provides shared error handling for pipeline stages:
// sentinel markers for wrap-based tagging, the closed failure-code taxonomy
// used by the orchestrator to decide retry versus abort versus degrade, and
// the retry helper that applies exponential backoff to recoverable failures.
package services
