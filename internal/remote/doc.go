// Package remote discovers candidate recordings on the remote store.
//
// The store is exposed through the Client interface; the production
// implementation treats an S3-compatible bucket as a directory tree using
// key delimiters. Catalog implements the date-folder discovery heuristic
// that bounds how much of the tree a run considers.
package remote
