// Package batch splits work into fixed-size batches and runs them with
// bounded concurrency, reporting progress after every batch.
//
// The crawler uses it to fetch one tree level at a time: each level's folders
// are chunked into batches so a deep or wide data tree never has more than
// batchSize*concurrency requests in flight.
package batch
