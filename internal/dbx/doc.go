// Package dbx is the storage plumbing under the blog's repositories.
//
// Repositories are written against DBTX, so the same code runs on the
// shared *sql.DB or inside a transaction opened by WithTx (the catalog
// seed replaces every article in one). Services never hold a *sql.DB
// directly: they ask a Handle for it. In the server that Handle is Lazy,
// which connects, pings and migrates Postgres on first use; tests pass
// Static. Ping backs the readiness endpoint and the gRPC health probe.
package dbx
