// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package. It handles query
// execution and data mapping between domain entities and database records.
//
// Conditional updates (booking status, offer status, capacity counters) are
// expressed as single UPDATE ... WHERE statements so the database provides
// the compare-and-swap guarantees the services rely on.
package postgres
