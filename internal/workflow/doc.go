// Package workflow coordinates one ingestion run: it opens the remote
// connection, lists recent recordings through the catalog, and walks the
// items strictly one at a time through fetch, normalize, transcribe and
// record stages. Item failures are confined to the item; only a failure to
// establish the remote connection aborts the run.
package workflow
