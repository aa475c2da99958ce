package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"purchase-manager/core/entitlement"
	"purchase-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNotPublished is returned when the catalog object does not exist.
var ErrNotPublished = errors.New("catalog has not been published")

// Service loads the product catalog from object storage. It implements
// entitlement.CatalogLoader.
type Service struct {
	client storage.Client
	bucket string
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	cached  *Document
	fetched time.Time
	sf      singleflight.Group
}

// NewService creates a new catalog service.
func NewService(client storage.Client, bucket string, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// LoadCatalog returns the requested products that exist in the catalog.
func (s *Service) LoadCatalog(ctx context.Context, productIDs []string) ([]entitlement.ProductDescriptor, error) {
	doc, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	products := doc.Filter(productIDs)
	if len(products) < len(productIDs) {
		s.logger.Warn("Catalog is missing requested products",
			zap.Int("requested", len(productIDs)),
			zap.Int("found", len(products)),
		)
	}
	return products, nil
}

// Fetch returns the catalog, serving a cached copy until it is older than the
// configured TTL. Concurrent refreshes share one download, which is not
// cancelled when the caller that started it goes away.
func (s *Service) Fetch(ctx context.Context) (*Document, error) {
	if doc, ok := s.fresh(); ok {
		return doc, nil
	}

	result, err, _ := s.sf.Do(s.cfg.Object, func() (any, error) {
		if doc, ok := s.fresh(); ok {
			return doc, nil
		}

		doc, err := s.download(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.cached = doc
		s.fetched = s.now()
		s.mu.Unlock()

		s.logger.Debug("Fetched catalog", zap.Int("products", len(doc.Products)))
		return doc, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*Document), nil
}

// Invalidate drops the cached catalog.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// Publish validates doc and uploads it as the current catalog, keeping a copy
// under the archive prefix. The bucket is created if needed. Unlike downloads,
// publishing rejects products of unknown kind.
func (s *Service) Publish(ctx context.Context, doc Document) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", fmt.Errorf("invalid catalog: %w", err)
	}
	if unknown := doc.UnknownKinds(); len(unknown) > 0 {
		return "", fmt.Errorf("invalid catalog: products of unknown kind: %s", strings.Join(unknown, ", "))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode catalog: %w", err)
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return "", fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}

	archive := s.cfg.ArchivePrefix + s.now().UTC().Format("20060102T150405Z") + ".json"
	for _, object := range []string{archive, s.cfg.Object} {
		_, err := s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: "application/json"})
		if err != nil {
			return "", fmt.Errorf("failed to upload %s: %w", object, err)
		}
	}

	s.Invalidate()
	s.logger.Info("Published catalog", zap.String("revision", archive), zap.Int("products", len(doc.Products)))
	return archive, nil
}

// History lists archived catalog revisions.
func (s *Service) History(ctx context.Context) ([]Revision, error) {
	var revisions []Revision
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.cfg.ArchivePrefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list catalog revisions: %w", obj.Err)
		}
		revisions = append(revisions, Revision{
			Name:         strings.TrimPrefix(obj.Key, s.cfg.ArchivePrefix),
			Size:         obj.Size,
			LastModified: obj.LastModified.UTC().Format(time.RFC3339),
		})
	}
	return revisions, nil
}

func (s *Service) fresh() (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cached == nil || s.cfg.CacheTTL <= 0 {
		return nil, false
	}
	if s.now().Sub(s.fetched) > s.cfg.CacheTTL {
		return nil, false
	}
	return s.cached, true
}

func (s *Service) download(ctx context.Context) (*Document, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.cfg.Object, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapStorageError(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapStorageError(err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	if unknown := doc.UnknownKinds(); len(unknown) > 0 {
		s.logger.Warn("Catalog lists products of unknown kind", zap.Strings("product_ids", unknown))
	}
	return &doc, nil
}

func mapStorageError(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNotPublished
	}
	return fmt.Errorf("failed to read catalog: %w", err)
}
