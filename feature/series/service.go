package series

import (
	"context"
	"errors"
	"fmt"

	"point-record/core/point"
	"point-record/core/reconcile"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrInvalidRange means the requested range has Start > End.
	ErrInvalidRange = errors.New("invalid time range")
	// ErrUnavailable means the record could not complete the request.
	ErrUnavailable = errors.New("record unavailable")
)

// Direction selects a single-point lookup.
type Direction string

const (
	At     Direction = "at"
	Before Direction = "before"
	After  Direction = "after"
)

// FilterState is the externally visible filter configuration.
type FilterState struct {
	Mode  reconcile.FilterMode `json:"mode"`
	Codes []point.Quality      `json:"codes"`
}

// FilterUpdate changes the filter. Nil fields are left unchanged.
type FilterUpdate struct {
	Mode  *string         `json:"mode"`
	Codes *[]point.Quality `json:"codes"`
}

// WriteResult reports whether a write reached the record.
type WriteResult struct {
	Applied bool   `json:"applied"`
	Count   int    `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Service exposes a point record to the HTTP layer.
type Service struct {
	record *reconcile.Record
	logger *zap.Logger
	group  singleflight.Group
}

// NewService creates a new series service.
func NewService(record *reconcile.Record, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{record: record, logger: logger}
}

// Range returns the points of id within r. Identical concurrent requests
// share one reconciliation.
func (s *Service) Range(ctx context.Context, id string, r point.TimeRange) ([]point.Point, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}

	key := fmt.Sprintf("%s|%d|%d", id, r.Start, r.End)
	// joined callers must not lose the result when the first one goes away
	shared := context.WithoutCancel(ctx)
	v, _, joined := s.group.Do(key, func() (interface{}, error) {
		return s.record.PointsInRange(shared, id, r), nil
	})

	pts := v.([]point.Point)
	if joined {
		pts = append([]point.Point(nil), pts...)
	}
	if pts == nil {
		pts = []point.Point{}
	}
	return pts, nil
}

// Lookup returns one point relative to t.
func (s *Service) Lookup(ctx context.Context, id string, dir Direction, t int64) (point.Point, bool, error) {
	switch dir {
	case At:
		p, ok := s.record.PointAt(ctx, id, t)
		return p, ok, nil
	case Before:
		p, ok := s.record.PointBefore(ctx, id, t)
		return p, ok, nil
	case After:
		p, ok := s.record.PointAfter(ctx, id, t)
		return p, ok, nil
	default:
		return point.Point{}, false, fmt.Errorf("%w: unknown lookup %q", reconcile.ErrInvalidRequest, dir)
	}
}

// Register registers name with units.
func (s *Service) Register(ctx context.Context, name, units string) error {
	if name == "" {
		return fmt.Errorf("%w: empty series name", reconcile.ErrInvalidRequest)
	}
	if s.record.RegisterSeries(ctx, name, units) {
		return nil
	}

	err := s.record.LastError()
	if err == nil {
		err = ErrUnavailable
	}
	if !errors.Is(err, reconcile.ErrRegistrationConflict) && !errors.Is(err, reconcile.ErrInvalidRequest) {
		err = fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	s.logger.Warn("Series registration failed", zap.String("name", name), zap.Error(err))
	return err
}

// Append writes points to id. With bulk set the write is wrapped in a bulk
// operation boundary.
func (s *Service) Append(ctx context.Context, id string, points []point.Point, bulk bool) WriteResult {
	if bulk && !s.record.BeginBulkOperation(ctx) {
		return s.skipped()
	}

	var applied bool
	if len(points) == 1 {
		applied = s.record.AddPoint(ctx, id, points[0])
	} else {
		applied = s.record.AddPoints(ctx, id, points)
	}

	if bulk && !s.record.EndBulkOperation(ctx) {
		applied = false
	}
	if !applied {
		return s.skipped()
	}
	return WriteResult{Applied: true, Count: len(points)}
}

// Invalidate removes the persisted record of id.
func (s *Service) Invalidate(ctx context.Context, id string) WriteResult {
	if !s.record.Invalidate(ctx, id) {
		return s.skipped()
	}
	return WriteResult{Applied: true}
}

// ResetCache drops the buffered points of id.
func (s *Service) ResetCache(ctx context.Context, id string) WriteResult {
	if !s.record.ResetSeries(ctx, id) {
		return s.skipped()
	}
	return WriteResult{Applied: true}
}

func (s *Service) skipped() WriteResult {
	res := WriteResult{Applied: false}
	if s.record.IsReadOnly() {
		res.Error = "record is read-only"
	} else if err := s.record.LastError(); err != nil {
		res.Error = err.Error()
	}
	return res
}

// Filter returns the active filter.
func (s *Service) Filter() FilterState {
	return FilterState{Mode: s.record.FilterMode(), Codes: s.record.FilterCodes()}
}

// UpdateFilter applies u and returns the resulting filter.
func (s *Service) UpdateFilter(ctx context.Context, u FilterUpdate) (FilterState, error) {
	if u.Mode != nil {
		mode, err := reconcile.ParseFilterMode(*u.Mode)
		if err != nil {
			return FilterState{}, err
		}
		if err := s.record.SetFilterMode(ctx, mode); err != nil {
			return FilterState{}, err
		}
	}
	if u.Codes != nil {
		s.record.ClearFilterCodes(ctx)
		for _, c := range *u.Codes {
			s.record.AddFilterCode(ctx, c)
		}
	}
	return s.Filter(), nil
}

// Status returns the record diagnostics.
func (s *Service) Status() reconcile.Status {
	return s.record.Status()
}
