/*
Package objectreader implements deltakit's Object Reader: a
backend-polymorphic, read-only capability set over {local, S3, GCS, Azure}
object storage.

# Architecture

Reader is dispatched on an enumerated BackendKind rather than open
inheritance; every backend is known at compile time:

	New(baseURI) ─── parse scheme ───┬─ file:// / bare path → *localReader
	                                  ├─ s3://               → *s3Reader
	                                  ├─ gs://                → *gcsReader
	                                  └─ abfs(s)://            → *azureReader

All four implementations satisfy the same Reader interface and share the
same retry policy (retry.go): transient Network errors are retried with
bounded exponential backoff (cenkalti/backoff/v4), capped at 5 attempts and
30 seconds total elapsed; every other error kind — NotFound, Forbidden,
Malformed — surfaces immediately. Paths passed to Reader methods are
relative to the Reader's base URI; ListPrefix returns a lazy iterator
(Go's iter.Seq2) so the Log Replayer never materializes a full listing it
doesn't need.
*/
package objectreader
