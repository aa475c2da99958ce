// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so the product catalog can live in AWS S3 or a
// self-hosted MinIO instance. The Client interface is narrowed to the calls the
// catalog needs and is mocked in core/storage/mocks.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	obj, err := client.GetObject(ctx, cfg.Storage.Bucket, "catalog/products.json", minio.GetObjectOptions{})
package storage
