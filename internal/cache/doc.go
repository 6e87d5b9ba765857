// Package cache keeps fetched directory listings and record files on disk
// with a TTL, so repeated invocations against the same data tree do not
// re-download resources that were seen recently.
//
// Entries are JSON files named after the SHA-256 of the resource URL and are
// written atomically (temp file + rename). A disabled store answers every
// call with ErrCacheDisabled, which callers treat as a miss.
package cache
