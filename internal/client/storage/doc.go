// Package storage provides the two-scope key/value store the session state
// lives in.
//
// The Durable scope survives process restarts (a SQLite file in production);
// the Volatile scope lives only as long as the process, mirroring a browser's
// per-tab session storage. Writes are expressed as batches of Op values and
// applied atomically with respect to each other and to reads.
package storage
