// Package catalog provides a product catalog whose rows live in a metadata
// repository and whose images live in an external blob store.
//
// The Service keeps the two stores consistent across create, update and
// delete. Image uploads are fanned out concurrently and tolerate partial
// failure; blob deletes are best effort. There is no transaction spanning
// both stores: an upload whose row write fails leaves an orphaned blob, and a
// failed blob delete leaves an unreferenced object behind. Both are logged and
// reported to the configured EventSink.
//
// Repositories (memory, Postgres, Redis-cached) and blob stores (memory,
// filesystem, S3) are provided under subpackages.
package catalog
