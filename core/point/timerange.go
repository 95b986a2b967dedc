package point

import "fmt"

// TimeRange is a closed interval [Start, End] of unix seconds.
type TimeRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Intersection classifies how a requested range overlaps a reference range.
type Intersection int

const (
	// IntersectNone means the ranges do not overlap, or one of them is invalid.
	IntersectNone Intersection = iota
	// IntersectOtherInternal means the other range lies entirely within this one.
	IntersectOtherInternal
	// IntersectLeft means this range's start is covered by the other range,
	// which extends further left.
	IntersectLeft
	// IntersectRight means this range's end is covered by the other range,
	// which extends further right.
	IntersectRight
	// IntersectOtherExternal means this range lies entirely within the other one.
	IntersectOtherExternal
)

var intersectionNames = map[Intersection]string{
	IntersectNone:          "none",
	IntersectOtherInternal: "other_internal",
	IntersectLeft:          "left",
	IntersectRight:         "right",
	IntersectOtherExternal: "other_external",
}

func (i Intersection) String() string {
	if name, ok := intersectionNames[i]; ok {
		return name
	}
	return fmt.Sprintf("intersection(%d)", int(i))
}

// IsValid reports whether Start <= End.
func (r TimeRange) IsValid() bool {
	return r.Start <= r.End
}

// Contains reports whether t lies within the range, bounds included.
func (r TimeRange) Contains(t int64) bool {
	return r.IsValid() && r.Start <= t && t <= r.End
}

// Duration returns End - Start in seconds.
func (r TimeRange) Duration() int64 {
	return r.End - r.Start
}

// ContainsRange reports whether other lies entirely within r.
func (r TimeRange) ContainsRange(other TimeRange) bool {
	return r.IsValid() && other.IsValid() && r.Start <= other.Start && other.End <= r.End
}

// Shift returns the range moved by d seconds.
func (r TimeRange) Shift(d int64) TimeRange {
	return TimeRange{Start: r.Start + d, End: r.End + d}
}

// Intersection classifies other against r. Exactly one classification holds.
// Equal ranges classify as IntersectOtherInternal.
func (r TimeRange) Intersection(other TimeRange) Intersection {
	switch {
	case !r.IsValid() || !other.IsValid():
		return IntersectNone
	case r.ContainsRange(other):
		return IntersectOtherInternal
	case other.ContainsRange(r):
		return IntersectOtherExternal
	case r.Contains(other.End):
		return IntersectLeft
	case r.Contains(other.Start):
		return IntersectRight
	default:
		return IntersectNone
	}
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}
