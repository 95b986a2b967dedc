package point

import "fmt"

// Quality is an opaque source/validity code attached to a point.
// Backends report their own codes; the named codes below are the ones this
// module assigns itself.
type Quality uint32

const (
	// QualityBad marks a point the source flagged as unusable.
	QualityBad Quality = 0
	// QualityUncertain marks a point of questionable validity.
	QualityUncertain Quality = 64
	// QualityOverride tags a point rewritten by the value filter pipeline.
	QualityOverride Quality = 128
	// QualityGood marks a point the source considers valid.
	QualityGood Quality = 192
)

// Point is a single timestamped measurement.
type Point struct {
	// Time is the measurement time in unix seconds.
	Time int64 `json:"time"`
	// Value is the measured value.
	Value float64 `json:"value"`
	// Quality is the source/validity code.
	Quality Quality `json:"quality"`
	// Confidence is the confidence attached to the value.
	Confidence float64 `json:"confidence"`
}

// New creates a good-quality point with zero confidence.
func New(t int64, value float64) Point {
	return Point{Time: t, Value: value, Quality: QualityGood}
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%g(q=%d,c=%g)", p.Time, p.Value, p.Quality, p.Confidence)
}

// Span returns the range covered by a time-ordered slice of points.
// ok is false when points is empty.
func Span(points []Point) (r TimeRange, ok bool) {
	if len(points) == 0 {
		return TimeRange{}, false
	}
	return TimeRange{Start: points[0].Time, End: points[len(points)-1].Time}, true
}
