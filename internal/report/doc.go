// Package report delivers finished run results to log output, blob storage,
// Pub/Sub and Postgres. Reports are archives; nothing reads them back.
package report
