// Package jobs persists generation jobs in SQLite so progress survives
// restarts and the CLI can list, retry, and clear past runs. A file lock
// keeps concurrent coursecast processes from sharing the writer.
package jobs
