package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"point-record/core/point"
)

// FilterMode selects how adapter-sourced points are transformed before caching.
type FilterMode string

const (
	// FilterPassThrough leaves points untouched.
	FilterPassThrough FilterMode = "passthrough"
	// FilterWhiteList keeps only points whose quality is in the code set.
	FilterWhiteList FilterMode = "whitelist"
	// FilterBlackList drops points whose quality is in the code set.
	FilterBlackList FilterMode = "blacklist"
	// FilterCodesToValues replaces the value with the quality code.
	FilterCodesToValues FilterMode = "codes_to_values"
	// FilterCodesToConfidence replaces the confidence with the quality code.
	FilterCodesToConfidence FilterMode = "codes_to_confidence"
)

// ParseFilterMode converts a configuration string into a FilterMode.
func ParseFilterMode(s string) (FilterMode, error) {
	switch mode := FilterMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case FilterPassThrough, FilterWhiteList, FilterBlackList, FilterCodesToValues, FilterCodesToConfidence:
		return mode, nil
	case "":
		return FilterPassThrough, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilterMode, s)
	}
}

// Filter is the value filter pipeline: a mode plus the quality code set the
// list modes consult.
type Filter struct {
	Mode  FilterMode
	Codes map[point.Quality]struct{}
}

// NewFilter creates a filter for mode over codes.
func NewFilter(mode FilterMode, codes ...point.Quality) Filter {
	f := Filter{Mode: mode, Codes: make(map[point.Quality]struct{}, len(codes))}
	for _, c := range codes {
		f.Codes[c] = struct{}{}
	}
	return f
}

func (f Filter) has(q point.Quality) bool {
	_, ok := f.Codes[q]
	return ok
}

// Apply transforms p according to the mode. ok is false when p is filtered out.
func (f Filter) Apply(p point.Point) (out point.Point, ok bool) {
	switch f.Mode {
	case FilterWhiteList:
		if !f.has(p.Quality) {
			return point.Point{}, false
		}
		p.Quality = point.QualityOverride
	case FilterBlackList:
		if f.has(p.Quality) {
			return point.Point{}, false
		}
		p.Quality = point.QualityOverride
	case FilterCodesToValues:
		p.Value = float64(p.Quality)
		p.Quality = point.QualityOverride
	case FilterCodesToConfidence:
		p.Confidence = float64(p.Quality)
		p.Quality = point.QualityOverride
	}
	return p, true
}

// ApplyAll runs Apply over points, dropping the filtered ones.
func (f Filter) ApplyAll(points []point.Point) []point.Point {
	if f.Mode == FilterPassThrough || f.Mode == "" {
		return points
	}
	out := make([]point.Point, 0, len(points))
	for _, p := range points {
		if fp, ok := f.Apply(p); ok {
			out = append(out, fp)
		}
	}
	return out
}

// SortedCodes returns the code set in ascending order.
func (f Filter) SortedCodes() []point.Quality {
	codes := make([]point.Quality, 0, len(f.Codes))
	for c := range f.Codes {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
