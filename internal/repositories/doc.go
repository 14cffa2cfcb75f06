// Package repositories implements SQLite persistence for scx entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [CredentialRepository] : OAuth tokens keyed by site and client id
//   - [RequestLogRepository] : API calls issued from the CLI
//   - [TokenStore] : adapter wiring [CredentialRepository] into the client's token exchange hook
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
