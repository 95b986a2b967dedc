// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface, which the export
// feature uses to publish range snapshots. Both AWS S3 and self-hosted MinIO
// instances are supported.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: bucket management (EnsureBucket combines them).
//   - PutObject: uploads content (with size and options).
//   - GetObject: retrieves content as a stream.
//   - ListObjects: lists objects in a bucket (supports prefix/recursive).
//   - RemoveObject: deletes one object.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
