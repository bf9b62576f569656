// Command scribe ingests call recordings from a remote store, normalizes
// them, transcribes them through a speech-to-text service, and records the
// results in a local database.
package main
