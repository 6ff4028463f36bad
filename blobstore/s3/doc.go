// Package s3 provides an Amazon S3 implementation of the
// blobstore.BlobStore interface, plus a DynamoDB-backed commit store for
// atomic CURRENT-pointer updates.
//
// # Usage
//
//	client, err := s3.NewClient(ctx, s3.WithRegion("us-east-1"))
//	store := s3.NewStore(client, "my-bucket", "datasets/session-42/")
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Streaming multipart uploads for large assignment blobs
//   - Automatic pagination for listing
//   - Configurable prefix for multi-dataset isolation
//
// S3 alone cannot compare-and-swap the CURRENT pointer; when several
// curators may commit concurrently, wrap the store in a DDBCommitStore.
package s3
