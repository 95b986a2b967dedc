package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"point-record/core/point"
	"point-record/core/reconcile"
	"point-record/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrInvalidName means an export object name would leave the series prefix.
var ErrInvalidName = errors.New("invalid export name")

// Snapshot is the document written for one export.
type Snapshot struct {
	Series     string          `json:"series"`
	Range      point.TimeRange `json:"range"`
	Points     []point.Point   `json:"points"`
	ExportedAt time.Time       `json:"exported_at"`
}

// Result describes an uploaded export.
type Result struct {
	Bucket string `json:"bucket"`
	Object string `json:"object"`
	Count  int    `json:"count"`
	Size   int64  `json:"size"`
}

// Object is one listed export.
type Object struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Service writes range snapshots of a point record to object storage.
type Service struct {
	record *reconcile.Record
	client storage.Client
	bucket string
	region string
	root   string
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new export service.
func NewService(record *reconcile.Record, client storage.Client, cfg storage.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		record: record,
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		root:   cfg.ExportPrefix(),
		logger: logger,
		now:    time.Now,
	}
}

// Prefix returns the object prefix of the exports of id.
func (s *Service) Prefix(id string) string {
	return s.root + "/" + id + "/"
}

// ObjectName returns the default object name of an export.
func (s *Service) ObjectName(id string, r point.TimeRange) string {
	return fmt.Sprintf("%s%d-%d.json", s.Prefix(id), r.Start, r.End)
}

// objectName resolves name inside the series prefix.
func (s *Service) objectName(id, name string) (string, error) {
	if name == "" || strings.Contains(name, "/") || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if path.Ext(name) != ".json" {
		name += ".json"
	}
	return s.Prefix(id) + name, nil
}

// Export reads the points of id within r through the record and uploads them.
// An empty name selects s.ObjectName(id, r).
func (s *Service) Export(ctx context.Context, id string, r point.TimeRange, name string) (*Result, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: invalid range %s", reconcile.ErrInvalidRequest, r)
	}
	object := s.ObjectName(id, r)
	if name != "" {
		var err error
		if object, err = s.objectName(id, name); err != nil {
			return nil, err
		}
	}

	pts := s.record.PointsInRange(ctx, id, r)
	if pts == nil {
		pts = []point.Point{}
	}
	data, err := json.Marshal(Snapshot{Series: id, Range: r, Points: pts, ExportedAt: s.now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	if err := storage.EnsureBucket(ctx, s.client, s.bucket, s.region); err != nil {
		return nil, err
	}
	info, err := s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", object, err)
	}

	s.logger.Info("Series exported",
		zap.String("series", id),
		zap.String("object", object),
		zap.Int("points", len(pts)),
	)
	return &Result{Bucket: s.bucket, Object: object, Count: len(pts), Size: info.Size}, nil
}

// List returns the exports of id.
func (s *Service) List(ctx context.Context, id string) ([]Object, error) {
	out := []Object{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.Prefix(id), Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list exports of %s: %w", id, obj.Err)
		}
		out = append(out, Object{
			Name:         strings.TrimPrefix(obj.Key, s.Prefix(id)),
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return out, nil
}

// Fetch downloads and decodes one export of id.
func (s *Service) Fetch(ctx context.Context, id, name string) (*Snapshot, error) {
	object, err := s.objectName(id, name)
	if err != nil {
		return nil, err
	}
	rc, err := s.client.GetObject(ctx, s.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", object, err)
	}
	defer rc.Close()

	var snap Snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", object, err)
	}
	return &snap, nil
}

// Delete removes one export of id.
func (s *Service) Delete(ctx context.Context, id, name string) error {
	object, err := s.objectName(id, name)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, object, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", object, err)
	}
	return nil
}
