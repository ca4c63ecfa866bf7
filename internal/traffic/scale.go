package traffic

import "math"

// Range is a pixel radius interval
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

var (
	// UnfilteredRange is used while no time filter is active
	UnfilteredRange = Range{Min: 0, Max: 25}

	// FilteredRange widens contrast for a narrow window and keeps a minimum
	// radius so near-empty stations stay hoverable
	FilteredRange = Range{Min: 3, Max: 50}
)

// RadiusScale maps traffic to a circle radius on a square-root curve, so
// circle area is proportional to traffic. The domain is fixed at
// construction; only the output range is swapped.
type RadiusScale struct {
	domainMax float64
	rng       Range
}

// NewRadiusScale builds a scale over [0, maxTraffic] with the unfiltered range
func NewRadiusScale(maxTraffic int) *RadiusScale {
	return &RadiusScale{
		domainMax: float64(maxTraffic),
		rng:       UnfilteredRange,
	}
}

// UseRange switches between the filtered and unfiltered output range
func (s *RadiusScale) UseRange(filtered bool) {
	if filtered {
		s.rng = FilteredRange
		return
	}
	s.rng = UnfilteredRange
}

// Range returns the active output range
func (s *RadiusScale) Range() Range {
	return s.rng
}

// DomainMax returns the fixed upper end of the domain
func (s *RadiusScale) DomainMax() float64 {
	return s.domainMax
}

// Radius maps a traffic value to a pixel radius. An empty domain maps
// everything to the range minimum.
func (s *RadiusScale) Radius(traffic int) float64 {
	if s.domainMax <= 0 || traffic <= 0 {
		return s.rng.Min
	}
	t := math.Sqrt(float64(traffic)) / math.Sqrt(s.domainMax)
	return s.rng.Min + (s.rng.Max-s.rng.Min)*t
}

// DefaultDepartureRatio is reported for stations without traffic
const DefaultDepartureRatio = 0.5

// flowBuckets are the quantized outputs for a departure ratio in [0, 1]
var flowBuckets = []float64{0, 0.5, 1}

// DepartureRatio quantizes departures/total into 0, 0.5 or 1. Thresholds
// sit at 1/3 and 2/3 and belong to the upper bucket.
func DepartureRatio(st StationTraffic) float64 {
	if st.TotalTraffic == 0 {
		return DefaultDepartureRatio
	}
	return quantize(float64(st.Departures) / float64(st.TotalTraffic))
}

func quantize(v float64) float64 {
	n := len(flowBuckets)
	i := int(math.Floor(v * float64(n)))
	if i < 0 {
		i = 0
	}
	if i > n-1 {
		i = n - 1
	}
	return flowBuckets[i]
}
