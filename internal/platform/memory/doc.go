// Package memory provides in-memory implementations of the store
// interfaces. They back unit tests and the database.backend=memory
// development mode. All implementations are safe for concurrent use and
// return defensive copies so callers can never mutate stored state except
// through the store API.
package memory
